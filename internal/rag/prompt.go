package rag

import (
	"fmt"
	"strings"
)

const systemPromptTemplate = `You are a helpful legal assistant. Use the following context to answer the user's question.

Guidelines:
- Format your answer using Markdown (bold, bullet points, headers) for readability.
- Be concise and professional.
- If the answer is not in the context, say you don't know.

Context:
%s
`

// JoinContext joins chunk texts with blank lines, in rank order.
func JoinContext(texts []string) string {
	return strings.Join(texts, "\n\n")
}

// BuildSystemPrompt embeds the retrieved context into the legal-assistant instructions.
func BuildSystemPrompt(texts []string) string {
	return fmt.Sprintf(systemPromptTemplate, JoinContext(texts))
}
