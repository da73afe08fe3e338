package parser

import (
	"fmt"
	"path/filepath"
	"strings"

	"symtable/internal/core/errors"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

type Parser struct {
	loader     *GrammarLoader
	extensions map[string]string
}

func NewParser(loader *GrammarLoader) *Parser {
	p := &Parser{
		loader:     loader,
		extensions: make(map[string]string),
	}
	for lang, spec := range loader.registry {
		for _, ext := range spec.Extensions {
			p.extensions[strings.ToLower(ext)] = lang
		}
	}
	return p
}

// Parse builds a syntax tree for content, choosing the grammar from path.
func (p *Parser) Parse(path string, content []byte) (*Tree, error) {
	lang := p.GetLanguage(path)
	if lang == "" {
		return nil, errors.AddContext(errors.New(errors.CodeNotSupported, "unsupported language"), errors.CtxPath, path)
	}

	grammar := p.loader.Language(lang)
	if grammar == nil {
		return nil, errors.New(errors.CodeInternal, fmt.Sprintf("grammar not loaded: %s", lang))
	}

	parser := sitter.NewParser()
	defer parser.Close()
	if err := parser.SetLanguage(grammar); err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "set language")
	}

	tree := parser.Parse(content, nil)
	if tree == nil {
		return nil, errors.New(errors.CodeInternal, "parse failed")
	}

	return &Tree{
		Path:     path,
		Language: lang,
		Source:   content,
		Root:     tree.RootNode(),
		tree:     tree,
	}, nil
}

func (p *Parser) IsSupportedPath(filePath string) bool {
	return p.GetLanguage(filePath) != ""
}

func (p *Parser) GetLanguage(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	return p.extensions[ext]
}

// SupportedExtensions lists the file extensions of the loaded grammars.
func (p *Parser) SupportedExtensions() []string {
	return p.loader.SupportedExtensions()
}
