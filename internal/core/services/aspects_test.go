package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relist-labs/relist-cli/internal/core/domain"
)

func testSchema() domain.AspectSchema {
	return domain.AspectSchema{
		CategoryID: "257",
		Aspects: []domain.AspectRequirement{
			{
				Name:        "Blade Length",
				Required:    true,
				Cardinality: domain.CardinalitySingle,
				Mode:        domain.ModeFreeText,
			},
			{
				Name:          "Color",
				Required:      true,
				Cardinality:   domain.CardinalitySingle,
				Mode:          domain.ModeSelectionOnly,
				AllowedValues: []string{"Black", "Silver"},
			},
			{
				Name:        "Features",
				Recommended: true,
				Cardinality: domain.CardinalityMulti,
				Mode:        domain.ModeFreeText,
			},
			{
				Name:        "Brand",
				Required:    true,
				Cardinality: domain.CardinalitySingle,
				Mode:        domain.ModeFreeText,
			},
		},
	}
}

func testProduct() domain.ProductSignal {
	return domain.ProductSignal{
		Title:       "Rain-X Latitude Wiper Blade 26 inch",
		Description: "All-weather beam blade",
	}
}

func TestAspectFiller_FillsFromSchema(t *testing.T) {
	llm := &mockLLMService{
		response: `{"Blade Length": "26 in", "Color": "Black", "Features": ["All-Weather", "Beam Style"]}`,
	}
	filler := NewAspectFiller(llm, domain.DefaultPipelineSettings())

	filled, err := filler.Fill(context.Background(), testProduct(), testSchema())
	require.NoError(t, err)

	assert.Equal(t, []string{"26 in"}, filled["Blade Length"])
	assert.Equal(t, []string{"Black"}, filled["Color"])
	assert.Equal(t, []string{"All-Weather", "Beam Style"}, filled["Features"])
	assert.Empty(t, filled.MissingRequired(testSchema()))
}

func TestAspectFiller_NeverOverwritesProtectedFields(t *testing.T) {
	llm := &mockLLMService{
		response: `{"Brand": "WrongBrand", "Blade Length": "26 in", "Color": "Black"}`,
	}
	filler := NewAspectFiller(llm, domain.DefaultPipelineSettings())

	filled, err := filler.Fill(context.Background(), testProduct(), testSchema())
	require.NoError(t, err)

	_, hasBrand := filled["Brand"]
	assert.False(t, hasBrand)
	// The protected aspect also never reaches the prompt.
	assert.NotContains(t, llm.lastPrompt(), `"Brand"`)
}

func TestAspectFiller_SelectionOnlyIsCaseSensitive(t *testing.T) {
	llm := &mockLLMService{
		response: `{"Blade Length": "26 in", "Color": "black"}`,
	}
	filler := NewAspectFiller(llm, domain.DefaultPipelineSettings())

	filled, err := filler.Fill(context.Background(), testProduct(), testSchema())
	require.NoError(t, err)

	_, hasColor := filled["Color"]
	assert.False(t, hasColor)
	assert.Contains(t, filled.MissingRequired(testSchema()), "Color")
}

func TestAspectFiller_SingleCardinalityKeepsFirstValue(t *testing.T) {
	llm := &mockLLMService{
		response: `{"Blade Length": ["26 in", "66 cm"], "Color": "Black"}`,
	}
	filler := NewAspectFiller(llm, domain.DefaultPipelineSettings())

	filled, err := filler.Fill(context.Background(), testProduct(), testSchema())
	require.NoError(t, err)
	assert.Equal(t, []string{"26 in"}, filled["Blade Length"])
}

func TestAspectFiller_ClampsLongValues(t *testing.T) {
	long := "Advanced all-weather beam blade technology. Provides a smooth, clean, streak-free wipe in rain, sleet and snow conditions."
	require.Greater(t, len(long), domain.AspectValueMaxLength)

	llm := &mockLLMService{
		response: `{"Blade Length": "` + long + `", "Color": "Black"}`,
	}
	filler := NewAspectFiller(llm, domain.DefaultPipelineSettings())

	filled, err := filler.Fill(context.Background(), testProduct(), testSchema())
	require.NoError(t, err)

	require.Len(t, filled["Blade Length"], 1)
	value := filled["Blade Length"][0]
	assert.LessOrEqual(t, len(value), domain.AspectValueMaxLength)
	// The clause before the first sentence break survives intact.
	assert.Equal(t, "Advanced all-weather beam blade technology", value)
}

func TestAspectFiller_DropsUnknownAspects(t *testing.T) {
	llm := &mockLLMService{
		response: `{"Blade Length": "26 in", "Color": "Black", "Made Up Aspect": "value"}`,
	}
	filler := NewAspectFiller(llm, domain.DefaultPipelineSettings())

	filled, err := filler.Fill(context.Background(), testProduct(), testSchema())
	require.NoError(t, err)
	_, ok := filled["Made Up Aspect"]
	assert.False(t, ok)
}

func TestAspectFiller_UnparseableOutputIsEmptyNotFatal(t *testing.T) {
	llm := &mockLLMService{response: "Sorry, I cannot help with that."}
	filler := NewAspectFiller(llm, domain.DefaultPipelineSettings())

	filled, err := filler.Fill(context.Background(), testProduct(), testSchema())
	require.NoError(t, err)
	assert.Empty(t, filled)
	// Missing required aspects are reportable downstream.
	assert.ElementsMatch(t, []string{"Blade Length", "Color", "Brand"},
		filled.MissingRequired(testSchema()))
}

func TestAspectFiller_CompletionFailureIsEmptyNotFatal(t *testing.T) {
	llm := &mockLLMService{generateErr: errors.New("rate limited")}
	filler := NewAspectFiller(llm, domain.DefaultPipelineSettings())

	filled, err := filler.Fill(context.Background(), testProduct(), testSchema())
	require.NoError(t, err)
	assert.Empty(t, filled)
}

func TestAspectFiller_NoLLMConfigured(t *testing.T) {
	filler := NewAspectFiller(nil, domain.DefaultPipelineSettings())

	filled, err := filler.Fill(context.Background(), testProduct(), testSchema())
	require.NoError(t, err)
	assert.Empty(t, filled)
}

func TestAspectFiller_RecommendedCanBeExcluded(t *testing.T) {
	llm := &mockLLMService{response: `{"Blade Length": "26 in", "Color": "Black"}`}
	settings := domain.DefaultPipelineSettings()
	settings.IncludeRecommended = false
	filler := NewAspectFiller(llm, settings)

	_, err := filler.Fill(context.Background(), testProduct(), testSchema())
	require.NoError(t, err)
	assert.NotContains(t, llm.lastPrompt(), `"Features"`)
}

func TestAspectFiller_StringifiesScalars(t *testing.T) {
	llm := &mockLLMService{response: `{"Blade Length": 26, "Color": "Black"}`}
	filler := NewAspectFiller(llm, domain.DefaultPipelineSettings())

	filled, err := filler.Fill(context.Background(), testProduct(), testSchema())
	require.NoError(t, err)
	require.Len(t, filled["Blade Length"], 1)
	assert.True(t, strings.HasPrefix(filled["Blade Length"][0], "26"))
}
