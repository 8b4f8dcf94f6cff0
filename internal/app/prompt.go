package app

import (
	"sort"
	"strings"

	"docuchat/internal/model"
)

// NoAnswerFallback is the exact sentence the model is instructed to return
// when the accessible documents do not contain the answer.
const NoAnswerFallback = "No relevant answer found in your accessible documents."

const promptPreamble = "You are a document assistant chatbot. Use ONLY the content from these documents to answer.\n" +
	"If the answer is not found word-for-word or clearly from the documents, reply exactly:\n" +
	"'" + NoAnswerFallback + "'\n\n" +
	"Give the answer in 2-4 short bullet points only.\n\n"

// buildPrompt assembles the grounding context: the fixed preamble, the
// question, then one labeled block per accessible document. The whole corpus
// goes in verbatim; documents are assumed small enough that no chunking or
// truncation is needed. Blocks are sorted by filename so the same request
// always produces the same prompt. Returns the prompt and the filenames it
// includes, in block order, for provenance.
func buildPrompt(question string, docs []model.Document) (string, []string) {
	sorted := make([]model.Document, len(docs))
	copy(sorted, docs)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Filename < sorted[j].Filename
	})

	blocks := make([]string, 0, len(sorted))
	filenames := make([]string, 0, len(sorted))
	for _, doc := range sorted {
		blocks = append(blocks, "From "+doc.Filename+":\n"+doc.Text)
		filenames = append(filenames, doc.Filename)
	}

	var b strings.Builder
	b.WriteString(promptPreamble)
	b.WriteString("Question: ")
	b.WriteString(question)
	b.WriteString("\n\nDocuments:\n")
	b.WriteString(strings.Join(blocks, "\n\n"))
	return b.String(), filenames
}
