package intent

import (
	"strings"

	"github.com/futig/ba-assistant/internal/pkg/textnorm"
)

// Vocabulary is stored folded the same way as user input, so "ё" is "е" and "й" is "и".

var creationStems = foldAll(
	"созда", "сдела", "сформиру", "сформировать", "сгенериру", "сгенерировать",
	"подготов", "составь", "составить", "напиш", "написать", "оформи", "выгруз",
	"построи", "построить", "собери", "собрать", "нарисуи",
	"generate", "create", "make", "build", "write", "draft", "prepare", "export",
)

var needStems = foldAll(
	"нуж", "надо", "необходим", "недостает", "хватает", "требуетс",
	"need", "missing", "lack", "require",
)

var documentStems = foldAll(
	"документ", "brd", "отчет", "требовани", "тз", "спецификац",
	"document", "report", "requirement", "spec",
)

var missingDataPhrases = phrases(
	"чего не хватает", "чего еще не хватает", "что нужно", "что еще нужно",
	"что необходимо", "что требуется", "какие данные", "каких данных",
	"какие сведения", "какой информации", "что еще указать", "что добавить",
	"what is missing", "whats missing", "what do you need", "what else do you need",
	"what data", "which data", "what information",
)

var proceedPhrases = phrases(
	"по имеющимся данным", "по имеющимся", "из того что есть", "с тем что есть",
	"по тому что есть", "без уточнении", "без вопросов", "без дополнительных вопросов",
	"не спрашивай", "не задавай вопросов", "не уточняи", "как есть", "с текущими данными",
	"use what you have", "with what you have", "without questions", "dont ask", "as is",
)

var whichWords = wordSet("какие", "какой", "какая", "каких", "какое", "каким", "which", "what")

var interrogatives = wordSet(
	"как", "что", "зачем", "почему", "какой", "какие", "какая", "кто", "где",
	"когда", "сколько", "чем", "ли",
	"how", "what", "why", "who", "where", "when", "which",
)

var negations = wordSet("не", "нельзя", "not", "dont", "never", "no")

var continueWords = wordSet("дальше", "далее", "еще", "continue", "next")

var continueStems = foldAll("продолж", "допиш", "дописать", "continu")

var domainKeywords = phrases(
	"brd", "kpi", "sla", "бизнес требования", "use case", "user story",
	"цели", "риски", "роли", "участники", "входы", "выходы", "контроли",
)

func foldAll(words ...string) []string {
	out := make([]string, 0, len(words))
	for _, w := range words {
		out = append(out, strings.Join(textnorm.Tokens(w), " "))
	}
	return out
}

// phrases are matched against space-joined tokens, so each is padded with spaces.
func phrases(list ...string) []string {
	out := make([]string, 0, len(list))
	for _, p := range foldAll(list...) {
		out = append(out, " "+p+" ")
	}
	return out
}

func wordSet(words ...string) map[string]bool {
	set := make(map[string]bool, len(words))
	for _, w := range foldAll(words...) {
		set[w] = true
	}
	return set
}
