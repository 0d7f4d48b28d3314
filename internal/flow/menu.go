package flow

import (
	"sort"
	"strings"
)

// MenuOption is one canned FAQ entry selectable by digit.
type MenuOption struct {
	Question string
	Answer   string
}

// faqMenu maps a single-digit key to its question and canned answer.
// Option 5 switches the conversation into the advanced question mode
// answered by the knowledge base.
var faqMenu = map[string]MenuOption{
	"1": {
		Question: "Como ativar minha conta e começar a usar a plataforma?",
		Answer: "Para ativar sua conta:" +
			"\n1️⃣ Acesse https://app.suaempresa.com/ativar-conta" +
			"\n2️⃣ Informe seu e-mail cadastrado" +
			"\n3️⃣ Clique no link recebido por e-mail" +
			"\nPronto! Agora você pode fazer login e explorar o painel.",
	},
	"2": {
		Question: "Onde encontro o material de onboarding do cliente?",
		Answer: "Você pode acessar o material de onboarding em:" +
			"\nhttps://interna.suaempresa.com/onboarding" +
			"\nLá estão vídeos, guias e perguntas frequentes.",
	},
	"3": {
		Question: "Como integrar com meu sistema de RH/CRM?",
		Answer: "Para integrar:" +
			"\n• Gere sua chave de API em Configurações → Integrações" +
			"\n• Consulte a documentação em https://docs.suaempresa.com/api" +
			"\n• Se precisar, fale com o time de TI pelo chat interno.",
	},
	"4": {
		Question: "Quero falar com um atendente humano",
		Answer: "Sem problemas! Nossos canais de atendimento são:" +
			"\n📞 Telefone: (31) 4000-1234" +
			"\n💬 Chat interno (Slack): #suporte-cs",
	},
	"5": {
		Question: "Outra dúvida (usar buscador avançado)",
		Answer:   "Claro! Descreva sua dúvida em poucas palavras que buscarei a melhor resposta.",
	},
}

// Menu renders the help menu shown to identified users.
func Menu() string {
	keys := make([]string, 0, len(faqMenu))
	for k := range faqMenu {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	lines := []string{"📋 Central de Ajuda"}
	for _, k := range keys {
		lines = append(lines, k+") "+faqMenu[k].Question)
	}
	return strings.Join(lines, "\n")
}
