package main

import (
	"fmt"

	"github.com/palemoky/morning-reading/internal/annotation"
	"github.com/palemoky/morning-reading/internal/classifier"
	"github.com/palemoky/morning-reading/internal/config"
	"github.com/palemoky/morning-reading/internal/normalizer"
)

func newTransliterator(fold bool) (*classifier.Transliterator, error) {
	var opts []classifier.TransliteratorOption
	if fold {
		opts = append(opts, classifier.WithTraditionalFolding())
	}
	tr, err := classifier.NewTransliterator(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create transliterator: %w", err)
	}
	return tr, nil
}

// buildEngine wires the normalizer and its collaborators from cfg.
func buildEngine(cfg *config.Config) (*normalizer.Normalizer, error) {
	tr, err := newTransliterator(cfg.Annotation.FoldTraditional)
	if err != nil {
		return nil, err
	}

	tasks, err := classifier.NewTaskClassifier(cfg.TaskRules())
	if err != nil {
		return nil, fmt.Errorf("failed to create task classifier: %w", err)
	}

	repairer := annotation.NewRepairer(annotation.NewValidator(tr, cfg.Thresholds()))

	n, err := normalizer.New(cfg.NormalizerRules(), tasks, repairer, tr)
	if err != nil {
		return nil, fmt.Errorf("failed to create normalizer: %w", err)
	}

	return n, nil
}

// rulesSnapshot is what a persisted run records about its configuration.
type rulesSnapshot struct {
	Annotation config.AnnotationConfig `json:"annotation"`
	Tasks      config.TasksConfig      `json:"tasks"`
	Normalizer config.NormalizerConfig `json:"normalizer"`
}

func snapshotRules(cfg *config.Config) rulesSnapshot {
	return rulesSnapshot{
		Annotation: cfg.Annotation,
		Tasks:      cfg.Tasks,
		Normalizer: cfg.Normalizer,
	}
}
