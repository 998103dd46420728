package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tablelens-ai/tablelens-engine/pkg/models"
)

func TestScanSamplesForInjection_FlagsPayload(t *testing.T) {
	table := models.TableInput{
		Name: "users",
		Samples: strings.Join([]string{
			"1, alice, alice@example.com",
			"2, bob', ' OR '1'='1",
			"3, carol, carol@example.com",
		}, "\n"),
	}

	issues := ScanSamplesForInjection(table)

	require.Len(t, issues, 1)
	assert.Equal(t, "users", issues[0].TableName)
	assert.Equal(t, "Suspicious Content", issues[0].Type)
	assert.Equal(t, models.SeverityMedium, issues[0].Severity)
	assert.Contains(t, issues[0].Description, "Sample row 2")
}

func TestScanSamplesForInjection_CleanSamples(t *testing.T) {
	table := models.TableInput{
		Name:    "products",
		Samples: "1, widget, 9.99\n2, gadget, 19.99",
	}
	assert.Empty(t, ScanSamplesForInjection(table))
}

func TestScanSamplesForInjection_EmptySamples(t *testing.T) {
	assert.Empty(t, ScanSamplesForInjection(models.TableInput{Name: "t"}))
	assert.Empty(t, ScanSamplesForInjection(models.TableInput{Name: "t", Samples: "   \n  "}))
}
