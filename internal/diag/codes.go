package diag

import (
	"fmt"
)

type Code uint16

const (
	// Неизвестная ошибка
	UnknownCode Code = 0

	// Правила (lint)
	LintExcessiveWhitespaceInClassAttribute Code = 1001
	LintExcessiveWhitespaceInClassCallee    Code = 1002

	// Интеграция с парсером
	ParserIntegrationRequired Code = 2001
	ParseFailed               Code = 2002
	ParseUnsupportedLanguage  Code = 2003

	IOLoadFileError Code = 4001

	ObsInfo    Code = 6000
	ObsTimings Code = 6001
)

type codeInfo struct {
	id    string
	title string
}

var codeTable = map[Code]codeInfo{
	UnknownCode:                             {"unknown", "Unknown diagnostic"},
	LintExcessiveWhitespaceInClassAttribute: {"excessive-whitespace-in-class-attribute", "Excessive whitespace in class attribute"},
	LintExcessiveWhitespaceInClassCallee:    {"excessive-whitespace-in-class-callee", "Excessive whitespace in class callee argument"},
	ParserIntegrationRequired:               {"parser-integration-required", "Template-aware parser required"},
	ParseFailed:                             {"parse-failed", "Source could not be parsed"},
	ParseUnsupportedLanguage:                {"unsupported-language", "File type is not supported"},
	IOLoadFileError:                         {"io-load-file-error", "I/O load file error"},
	ObsInfo:                                 {"obs-info", "Observability information"},
	ObsTimings:                              {"obs-timings", "Pipeline timings"},
}

var codeByID = func() map[string]Code {
	out := make(map[string]Code, len(codeTable))
	for code, info := range codeTable {
		out[info.id] = code
	}
	return out
}()

// ID returns the stable string identifier of the code. For lint codes it
// doubles as the rule message id.
func (c Code) ID() string {
	if info, ok := codeTable[c]; ok {
		return info.id
	}
	return codeTable[UnknownCode].id
}

func (c Code) Title() string {
	if info, ok := codeTable[c]; ok {
		return info.title
	}
	return codeTable[UnknownCode].title
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}

// CodeFromID resolves a stable identifier back into a Code.
func CodeFromID(id string) (Code, bool) {
	c, ok := codeByID[id]
	return c, ok
}
