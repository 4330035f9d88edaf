// Package prompts builds the system and user prompts for question
// generation and submission analysis. The trainer targets Brazilian
// Portuguese certification tracks, so the prompt text is pt-BR.
package prompts

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rgfreitas/certtrainer/internal/model"
)

// ModeDeep requests the long-form pedagogical analysis; anything else is
// treated as the concise light mode.
const ModeDeep = "deep"

// WrongAnswer pairs a missed question with the option the learner chose.
type WrongAnswer struct {
	QuestionID string `json:"questionId"`
	Selected   string `json:"selected"`
}

// ExamSystem returns the system prompt for question generation.
func ExamSystem() string {
	return "Você é um especialista Microsoft certificado (AZ-900, AI-900 e DP-900). " +
		"Gere questões originais em português-BR com 4 alternativas e 1 correta, balanceando dificuldade. " +
		"Retorne somente JSON válido."
}

// ExamUser returns the user prompt asking for count new questions for a
// track, in the compact single-letter key format.
func ExamUser(track string, count int) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Gere %d questões para a certificação %s.\n", count, track)
	sb.WriteString("Formato JSON (chaves compactas):\n")
	sb.WriteString("[{\n")
	sb.WriteString("  \"s\": \"enunciado\",\n")
	sb.WriteString("  \"o\": { \"a\": \"...\", \"b\": \"...\", \"c\": \"...\", \"d\": \"...\" },\n")
	sb.WriteString("  \"c\": \"A|B|C|D\",\n")
	sb.WriteString("  \"d\": \"easy|medium|hard\",\n")
	fmt.Fprintf(&sb, "  \"r\": [\"%s: objetivo\"]\n", track)
	sb.WriteString("}]\n")
	sb.WriteString("Responda apenas JSON válido.")
	return sb.String()
}

// AnalysisSystem returns the system prompt for submission analysis.
func AnalysisSystem(mode string) string {
	if mode == ModeDeep {
		return "Você é um instrutor Microsoft especializado. Produza análise pedagógica profunda em português-BR. Sempre responda JSON."
	}
	return "Você é um instrutor Microsoft. Gere análise concisa em português-BR. Sempre responda JSON."
}

// AnalysisUser builds the user prompt for the missed questions of a
// submission. The payload carries only the worklist, never the full exam.
func AnalysisUser(questions []model.Question, wrong []WrongAnswer, language, mode string) string {
	payload := struct {
		AnalysisMode string           `json:"analysisMode"`
		Language     string           `json:"language"`
		Questions    []model.Question `json:"questions"`
		WrongAnswers []WrongAnswer    `json:"wrongAnswers"`
	}{mode, language, questions, wrong}

	data, _ := json.Marshal(payload)

	explanationSpec := `"explanation": 1-3 frases: motivo do erro e dica curta.`
	if mode == ModeDeep {
		explanationSpec = `"explanation": 5-8 frases: resposta do aluno <selected>, correta <correctOption>, conceito central, motivo do erro, dica acionável, exemplo curto.`
	}

	var sb strings.Builder
	sb.WriteString("Analise o desempenho do aluno.\n")
	fmt.Fprintf(&sb, "Entrada: %s\n", data)
	sb.WriteString("Formato JSON obrigatório:\n")
	sb.WriteString("{\n")
	sb.WriteString("  \"score\": 0-100,\n")
	sb.WriteString("  \"perQuestion\": [\n")
	fmt.Fprintf(&sb, "    { \"questionId\": \"Qn\", \"isCorrect\": true/false, %s }\n", explanationSpec)
	sb.WriteString("  ],\n")
	sb.WriteString("  \"strengths\": [\"...\"],\n")
	sb.WriteString("  \"gaps\": [\"...\"],\n")
	sb.WriteString("  \"studyPlan\": [\n")
	sb.WriteString("    { \"topic\": \"...\", \"why\": \"...\", \"resources\": [ { \"title\": \"...\", \"url\": \"...\" } ] }\n")
	sb.WriteString("  ]\n")
	sb.WriteString("}\n")
	sb.WriteString("Regras: somente questões fornecidas; inclua todas as incorretas; explanation sempre presente; retornar somente JSON válido.")
	return sb.String()
}
