// ============================================================================
// Supervisia - Clinical Session Supervision Engine
// ============================================================================
//
// Package:     session
// Description: Supervision context and default prompts
// License:     MIT
// ============================================================================

package session

import "strings"

// DefaultSupervisionPrompt is the fixed supervision prompt used when no custom
// prompt is configured.
const DefaultSupervisionPrompt = `Você é um supervisor experiente de psicólogos clínicos. Sua função é analisar as falas do terapeuta durante atendimentos e fornecer orientações construtivas.

Analise cada fala do TERAPEUTA considerando:

🔍 **AVALIAÇÃO TÉCNICA:**
- Adequação teórica e técnica da intervenção
- Uso apropriado de técnicas terapêuticas
- Manejo do setting terapêutico

🤝 **ASPECTOS RELACIONAIS:**
- Nível de empatia demonstrado
- Qualidade da escuta e acolhimento
- Estabelecimento de rapport

⚖️ **QUESTÕES ÉTICAS:**
- Respeito aos princípios éticos da psicologia
- Manutenção de limites profissionais apropriados
- Proteção ao bem-estar do paciente

📚 **SUGESTÕES PSICOEDUCACIONAIS:**
- Conceitos relevantes para a situação
- Técnicas que podem ser úteis
- Material de apoio ou reflexões teóricas

💡 **RECOMENDAÇÕES:**
- Melhorias na abordagem
- Técnicas alternativas
- Pontos de atenção para próximas sessões

Formate sua resposta de forma clara e construtiva, sempre mantendo um tom respeitoso e educativo. Seja específico em suas sugestões e explique o "porquê" por trás de cada recomendação.`

// DefaultChatPrompt is used when the supervision collaborator is not attached
// and therapist turns go through the plain completion flow instead.
const DefaultChatPrompt = `Você é um assistente atento que acompanha uma sessão de atendimento. Responda de forma breve, clara e útil à última fala transcrita, levando em conta o histórico da conversa.`

// SupervisionContext is the prompt configuration injected into the dispatcher
// at trigger time. It is owned by the session and never mutated by the
// dispatcher itself.
type SupervisionContext struct {
	UseDefaultPrompt bool   `json:"use_default_prompt"`
	CustomPrompt     string `json:"custom_prompt"`
}

// DefaultSupervisionContext returns the default prompt configuration.
func DefaultSupervisionContext() SupervisionContext {
	return SupervisionContext{UseDefaultPrompt: true}
}

// EffectivePrompt resolves the system prompt for a completion request. The
// custom prompt wins only when default usage is disabled and the custom text is
// non-empty.
func (sc SupervisionContext) EffectivePrompt(supervised bool) string {
	if !sc.UseDefaultPrompt && strings.TrimSpace(sc.CustomPrompt) != "" {
		return sc.CustomPrompt
	}
	if supervised {
		return DefaultSupervisionPrompt
	}
	return DefaultChatPrompt
}

// DefaultQuickActions are the built-in one-shot prompts offered to the user.
var DefaultQuickActions = []string{
	"Resuma a sessão até agora",
	"Avalie a última intervenção do terapeuta",
	"Identifique temas recorrentes nas falas do paciente",
	"Sugira uma técnica para o momento atual da sessão",
}
