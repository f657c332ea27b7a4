// Package format turns a raw merged transcript into publishable text: a full
// formatting pass, a second pass that recovers anything the first one
// dropped, and a title for the output file.
package format

import (
	"context"
	"fmt"
	"strings"

	"github.com/pemistahl/lingua-go"
	openai "github.com/sashabaranov/go-openai"
	"github.com/sirupsen/logrus"
)

type Formatter struct {
	client   *openai.Client
	model    string
	detector lingua.LanguageDetector
	log      *logrus.Entry
}

func NewFormatter(client *openai.Client, model string, log *logrus.Entry) *Formatter {
	if model == "" {
		model = openai.GPT4o
	}
	return &Formatter{
		client:   client,
		model:    model,
		detector: lingua.NewLanguageDetectorBuilder().FromAllLanguages().Build(),
		log:      log,
	}
}

// Format runs the two-pass cleanup. The first pass rewrites the raw
// transcript with proper grammar, paragraphs and markdown; the second pass
// asks for content the first pass missed and appends any non-empty answer
// after a blank line.
func (f *Formatter) Format(ctx context.Context, rawTranscript string) (string, error) {
	language := f.detectLanguage(rawTranscript)

	firstPass, err := f.complete(ctx,
		fmt.Sprintf("You are a careful transcription editor. Always respond in %s.", language),
		fmt.Sprintf(`Transcribe this recording. Exclude nothing.

1. Perfect grammar and punctuation
2. Proper paragraph breaks for topic changes
3. Correct capitalization and spelling
4. Remove filler words (um, uh, like) but keep all meaningful content
5. Format as clear, readable markdown with headings where appropriate

Keep the original meaning and tone entirely.

Raw transcription:
%s`, rawTranscript))
	if err != nil {
		return "", fmt.Errorf("formatting pass failed: %w", err)
	}

	missed, err := f.complete(ctx,
		fmt.Sprintf("You are a careful transcription editor. Always respond in %s.", language),
		fmt.Sprintf(`You've missed content. Exclude nothing.

Original raw transcription:
%s

Your previous formatted version:
%s

Please identify and return ONLY any content that was missed or excluded from the formatted version. If nothing was missed, return an empty string.`, rawTranscript, firstPass))
	if err != nil {
		return "", fmt.Errorf("recovery pass failed: %w", err)
	}

	missed = strings.TrimSpace(missed)
	if missed == "" {
		return firstPass, nil
	}
	return firstPass + "\n\n" + missed, nil
}

// Title generates a short title for the formatted transcript, sanitized for
// use inside an object key.
func (f *Formatter) Title(ctx context.Context, text string) (string, error) {
	title, err := f.complete(ctx,
		"You generate short titles. Reply only with the title, no other text.",
		fmt.Sprintf("Generate a title for the following transcription.\n<transcription>%s</transcription>", text))
	if err != nil {
		return "", fmt.Errorf("title generation failed: %w", err)
	}
	return sanitizeTitle(title), nil
}

func (f *Formatter) complete(ctx context.Context, system, user string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: f.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	}

	resp, err := f.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

func (f *Formatter) detectLanguage(text string) string {
	language, ok := f.detector.DetectLanguageOf(text)
	if !ok {
		return "the transcript's language"
	}
	f.log.WithField("language", language.String()).Debug("detected transcript language")
	return language.String()
}

// sanitizeTitle strips characters that do not belong in an object key and
// bounds the length.
func sanitizeTitle(title string) string {
	title = strings.TrimSpace(title)
	title = strings.Trim(title, `"'`)

	var b strings.Builder
	for _, r := range title {
		switch {
		case r == '/' || r == '\\' || r == '\n' || r == '\r' || r == '\t':
			b.WriteRune('-')
		case r == ':' || r == '*' || r == '?' || r == '"' || r == '<' || r == '>' || r == '|':
			// dropped
		default:
			b.WriteRune(r)
		}
	}

	clean := strings.TrimSpace(b.String())
	const maxTitleLen = 120
	if len(clean) > maxTitleLen {
		clean = strings.TrimSpace(clean[:maxTitleLen])
	}
	if clean == "" {
		clean = "Untitled"
	}
	return clean
}
