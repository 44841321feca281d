package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"know-law-go/internal/model"
)

func TestDetectLocale(t *testing.T) {
	assert.Equal(t, LocaleEnglish, DetectLocale("What is a contract?"))
	assert.Equal(t, LocaleArabic, DetectLocale("ما هو العقد؟"))
	// 混合文本中出现阿拉伯文即判定为阿拉伯语
	assert.Equal(t, LocaleArabic, DetectLocale("question about عقد"))
	assert.Equal(t, LocaleEnglish, DetectLocale(""))
}

func TestStaticStrategyKeywordMatch(t *testing.T) {
	s := NewStaticStrategy()

	answer, err := s.Generate(context.Background(), ReplyRequest{Message: "What is a contract?"})
	require.NoError(t, err)
	assert.Contains(t, answer, "legally binding agreement")

	answer, err = s.Generate(context.Background(), ReplyRequest{Message: "أريد أن أفهم شروط العقد"})
	require.NoError(t, err)
	assert.Contains(t, answer, "ملزم قانونياً")
}

func TestStaticStrategyFirstEntryWins(t *testing.T) {
	s := NewStaticStrategy()

	// 同时命中 contract 与 divorce 时，表中靠前的 contract 胜出
	answer, err := s.Generate(context.Background(), ReplyRequest{Message: "divorce contract question"})
	require.NoError(t, err)
	assert.Contains(t, answer, "legally binding agreement")
}

func TestStaticStrategyCaseInsensitive(t *testing.T) {
	s := NewStaticStrategy()

	answer, err := s.Generate(context.Background(), ReplyRequest{Message: "TELL ME ABOUT INHERITANCE"})
	require.NoError(t, err)
	assert.Contains(t, answer, "estate is distributed")
}

func TestStaticStrategyIntents(t *testing.T) {
	s := NewStaticStrategy()

	answer, err := s.Generate(context.Background(), ReplyRequest{Message: "Hello!"})
	require.NoError(t, err)
	assert.Contains(t, answer, "Know Law assistant")

	answer, err = s.Generate(context.Background(), ReplyRequest{Message: "شكراً جزيلاً"})
	require.NoError(t, err)
	assert.Contains(t, answer, "الرحب والسعة")
}

func TestStaticStrategyFallback(t *testing.T) {
	s := NewStaticStrategy()

	answer, err := s.Generate(context.Background(), ReplyRequest{Message: "quantum computing question"})
	require.NoError(t, err)
	assert.Equal(t, fallbackEN, answer)

	answer, err = s.Generate(context.Background(), ReplyRequest{Message: "سؤال عن الفيزياء"})
	require.NoError(t, err)
	assert.Equal(t, fallbackAR, answer)
}

func TestStaticStrategyAcknowledgesFiles(t *testing.T) {
	s := NewStaticStrategy()

	files := []model.FileInfo{
		{Name: "agreement.pdf", Size: 1024, Mimetype: "application/pdf"},
		{Name: "notes.txt", Size: 64, Mimetype: "text/plain"},
	}
	answer, err := s.Generate(context.Background(), ReplyRequest{Message: "please review these", Files: files})
	require.NoError(t, err)

	// 只确认文件名并追问，不声称已分析内容
	assert.Contains(t, answer, "agreement.pdf")
	assert.Contains(t, answer, "notes.txt")
	assert.Contains(t, answer, "can't analyze file contents")
	assert.False(t, strings.Contains(answer, "legally binding agreement"))
}
