package service_test

import (
	"testing"

	"github.com/anirazizfsm-maker/ai-workflow-builder-sub000/pkg/models"
	"github.com/anirazizfsm-maker/ai-workflow-builder-sub000/pkg/service"
	"github.com/anirazizfsm-maker/ai-workflow-builder-sub000/pkg/storage"
	"github.com/stretchr/testify/assert"
)

func TestTemplateMatcher(t *testing.T) {
	store := storage.NewMockStore()
	_, err := store.SaveTemplate(models.Template{
		Name:     "Lead capture",
		Category: "marketing",
		Keywords: "lead, form, crm",
	})
	assert.NoError(t, err)
	_, err = store.SaveTemplate(models.Template{
		Name:     "Invoice reminder",
		Category: "finance",
		Keywords: "invoice, payment, reminder",
	})
	assert.NoError(t, err)

	matcher := service.NewTemplateMatcher(store, logger{})

	t.Run("HighestScoreWins", func(t *testing.T) {
		result, err := matcher.Match("When a lead submits the form, add them to the CRM")
		assert.NoError(t, err)
		assert.NotNil(t, result)
		assert.Equal(t, "Lead capture", result.Template.Name)
		assert.Equal(t, 3, result.Score)
	})

	t.Run("CaseInsensitive", func(t *testing.T) {
		result, err := matcher.Match("Send an INVOICE reminder")
		assert.NoError(t, err)
		assert.NotNil(t, result)
		assert.Equal(t, "Invoice reminder", result.Template.Name)
	})

	t.Run("NoKeywordNoMatch", func(t *testing.T) {
		result, err := matcher.Match("Tell me a joke")
		assert.NoError(t, err)
		assert.Nil(t, result)
	})
}
