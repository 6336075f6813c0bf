package engine

import (
	"context"
	"fmt"

	translate "cloud.google.com/go/translate"
	"golang.org/x/text/language"
	"google.golang.org/api/option"
)

// Google wraps the Cloud Translation API. It is not a generative backend:
// it cannot follow marker instructions, so terminology is always
// substituted directly, and output needs no reasoning-trace cleanup.
type Google struct {
	credentialsFile string
}

func NewGoogle(credentialsFile string) *Google {
	return &Google{credentialsFile: credentialsFile}
}

func (s *Google) ID() string             { return "google" }
func (s *Google) Capability() Capability { return DirectReplace }

func (s *Google) Translate(ctx context.Context, _ string, req Request) (string, error) {
	targetTag, err := language.Parse(string(req.TargetLang))
	if err != nil {
		return "", NewError(s.ID(), MalformedResponse, fmt.Errorf("target language: %w", err))
	}
	sourceTag, err := language.Parse(string(req.SourceLang))
	if err != nil {
		return "", NewError(s.ID(), MalformedResponse, fmt.Errorf("source language: %w", err))
	}

	var opts []option.ClientOption
	if s.credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(s.credentialsFile))
	}

	client, err := translate.NewClient(ctx, opts...)
	if err != nil {
		return "", NewError(s.ID(), AuthFailure, fmt.Errorf("create client: %w", err))
	}
	defer client.Close()

	translations, err := client.Translate(ctx, []string{req.Text}, targetTag, &translate.Options{
		Source: sourceTag,
		Format: translate.Text,
	})
	if err != nil {
		return "", NewError(s.ID(), categorizeTransport(err), err)
	}
	if len(translations) == 0 {
		return "", NewError(s.ID(), MalformedResponse, fmt.Errorf("no translation returned"))
	}
	return translations[0].Text, nil
}

func (s *Google) Probe(ctx context.Context) error {
	if s.credentialsFile == "" {
		return NewError(s.ID(), AuthFailure, fmt.Errorf("credentials not configured"))
	}
	return nil
}
