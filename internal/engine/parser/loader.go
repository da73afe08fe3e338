package parser

import (
	"sort"
	"unsafe"

	"symtable/internal/core/errors"

	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_go "github.com/tree-sitter/tree-sitter-go/bindings/go"
)

// LanguageSpec describes how files map onto a compiled-in grammar.
type LanguageSpec struct {
	Extensions []string
	grammar    func() unsafe.Pointer
}

var defaultRegistry = map[string]LanguageSpec{
	"go": {
		Extensions: []string{".go"},
		grammar:    tree_sitter_go.Language,
	},
}

type GrammarLoader struct {
	languages map[string]*sitter.Language
	registry  map[string]LanguageSpec
}

// NewGrammarLoader loads the grammars for the given languages, or for every
// registered language when none are named.
func NewGrammarLoader(langs ...string) (*GrammarLoader, error) {
	if len(langs) == 0 {
		for lang := range defaultRegistry {
			langs = append(langs, lang)
		}
		sort.Strings(langs)
	}

	gl := &GrammarLoader{
		languages: make(map[string]*sitter.Language, len(langs)),
		registry:  make(map[string]LanguageSpec, len(langs)),
	}
	for _, lang := range langs {
		spec, ok := defaultRegistry[lang]
		if !ok {
			return nil, errors.AddContext(
				errors.New(errors.CodeNotSupported, "no grammar for language "+lang),
				errors.CtxOperation, "load grammar")
		}
		gl.languages[lang] = sitter.NewLanguage(spec.grammar())
		gl.registry[lang] = spec
	}
	return gl, nil
}

func (gl *GrammarLoader) Language(lang string) *sitter.Language {
	return gl.languages[lang]
}

func (gl *GrammarLoader) SupportedExtensions() []string {
	var extensions []string
	for _, spec := range gl.registry {
		extensions = append(extensions, spec.Extensions...)
	}
	sort.Strings(extensions)
	return extensions
}
