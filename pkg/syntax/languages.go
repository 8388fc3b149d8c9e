package syntax

import (
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"unsafe"

	sitter "github.com/alexaandru/go-tree-sitter-bare"
	"github.com/alexaandru/go-sitter-forest/javascript"
	"github.com/alexaandru/go-sitter-forest/tsx"
	"github.com/alexaandru/go-sitter-forest/typescript"
	"github.com/src-d/enry/v2"
)

// Language identifies one of the supported grammars.
type Language string

// Supported grammars.
const (
	TSX        Language = "tsx"
	TypeScript Language = "typescript"
	JavaScript Language = "javascript"
)

// ErrUnknownLanguage is returned when a file cannot be mapped to a grammar.
var ErrUnknownLanguage = errors.New("unknown language")

// languageFuncs maps grammars to their tree-sitter GetLanguage functions.
var languageFuncs = map[Language]func() unsafe.Pointer{
	TSX:        tsx.GetLanguage,
	TypeScript: typescript.GetLanguage,
	JavaScript: javascript.GetLanguage,
}

// enryNames maps linguist language names to grammars.
var enryNames = map[string]Language{
	"TSX":        TSX,
	"TypeScript": TypeScript,
	"JavaScript": JavaScript,
}

// extensions is consulted before enry: JSX-bearing files always need the tsx grammar.
var extensions = map[string]Language{
	".tsx": TSX,
	".jsx": TSX,
	".ts":  TypeScript,
	".mts": TypeScript,
	".cts": TypeScript,
	".js":  JavaScript,
	".mjs": JavaScript,
	".cjs": JavaScript,
}

var languageCache sync.Map

// DetectLanguage picks a grammar for the given file.
func DetectLanguage(path string, content []byte) (Language, error) {
	if lang, ok := extensions[strings.ToLower(filepath.Ext(path))]; ok {
		return lang, nil
	}

	if lang, ok := enryNames[enry.GetLanguage(filepath.Base(path), content)]; ok {
		return lang, nil
	}

	return "", ErrUnknownLanguage
}

// grammar returns a cached tree-sitter language handle.
func grammar(lang Language) (*sitter.Language, error) {
	if cached, ok := languageCache.Load(lang); ok {
		sl, castOK := cached.(*sitter.Language)
		if castOK {
			return sl, nil
		}
	}

	fn, ok := languageFuncs[lang]
	if !ok {
		return nil, ErrUnknownLanguage
	}

	sl := sitter.NewLanguage(fn())
	languageCache.Store(lang, sl)

	return sl, nil
}
