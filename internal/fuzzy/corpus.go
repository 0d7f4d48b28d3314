package fuzzy

// Phrase corpora for rule-based classification. All lists are lowercase;
// inputs are lowercased before matching.

// Greetings are salutations honored once per conversation.
var Greetings = []string{
	"oi", "olá", "ola", "bom dia", "boa tarde", "boa noite", "e aí", "hey", "hello",
}

// AffirmativeReplies classify a positive continuation answer.
var AffirmativeReplies = []string{
	"sim",
	"claro",
	"pode ser",
	"quero",
	"sim, por favor",
	"ok",
	"sim claro",
	"com certeza",
	"claro que sim",
	"sim, quero",
	"quero sim",
	"sim, por gentileza",
	"claro que quero",
	"pode enviar",
	"quero saber mais",
	"sim quero saber mais",
	"sim quero",
	"sim, desejo",
	"sim, estou interessado",
	"sim, gostaria",
	"ok, pode fazer",
	"sim, vá em frente",
	"claro, pode fazer",
	"sim, confirme",
	"sim, prossiga",
	"sim, está correto",
	"sim, tudo bem",
	"sim, está certo",
	"certo, pode fazer",
	"isso mesmo, faça",
	"sim, eu quero",
	"ss",
}

// NegativeReplies classify a negative continuation answer.
var NegativeReplies = []string{
	"não",
	"nao",
	"não quero",
	"não, obrigado",
	"não, obrigada",
	"não preciso",
	"não estou interessado",
	"não, não quero",
	"não desejo",
	"não, agora não",
	"não é necessário",
	"não precisa",
	"não, por enquanto não",
	"não, talvez depois",
	"não, estou bem",
	"não quero relatório",
	"não, deixa assim",
	"não, está tudo certo",
	"não, pode deixar",
	"não, sem necessidade",
	"não agora",
	"não, pare",
	"não, encerre",
	"não, já resolvi",
	"acho que não",
	"talvez não",
	"prefiro não",
	"não por agora",
	"deixa para depois",
	"talvez depois",
	"deixa pra lá",
	"passo dessa vez",
	"está bom assim",
	"agora não, obrigado",
	"já resolvi",
	"pode parar",
	"não quero mais",
	"sem necessidade",
	"não me interessa",
	"n",
}

// ListJobsKeywords are phrasings that ask for the list of open jobs.
var ListJobsKeywords = []string{
	"ver nossas vagas",
	"ver vagas",
	"quais são as vagas",
	"quais sao as nossas vagas",
	"quais vagas estão disponíveis",
	"quais vagas estão abertas",
	"quais vagas estão em aberto",
	"quais vagas temos",
	"quero ver nossas vagas",
	"quero saber sobre nossas vagas",
	"poderia listar as vagas?",
	"gostaria de ver as vagas",
	"o que temos de vagas?",
	"quais as vagas?",
	"me mostra as vagas",
	"tem vagas abertas?",
	"lista de vagas",
	"quais vagas temos abertas?",
	"nossos processos",
	"processos de recrutamento",
	"mostrar vagas",
	"lista completa de vagas",
	"ver oportunidades",
	"quero ver os processos seletivos",
	"tem algum processo seletivo?",
	"quais são os processos seletivos?",
	"me fale sobre as oportunidades",
	"posso ver os processos?",
	"quero conhecer as vagas disponíveis",
	"pode listar as oportunidades?",
	"existem vagas disponíveis?",
	"pode me mostrar os processos?",
	"processos seletivos em aberto",
	"quais vagas estão abertas atualmente?",
	"pode mostrar as vagas em aberto?",
	"quais são as oportunidades disponíveis?",
	"tem algum cargo em aberto?",
	"há algum processo ativo?",
	"me informe as vagas",
	"me fale sobre as posições abertas",
	"quais outras vagas temos?",
	"me mostre nossas vagas",
	"quero visualizar as vagas",
	"quais são as vagas em aberto?",
	"tem alguma posição disponível?",
	"me diga as vagas disponíveis",
	"há alguma vaga aberta?",
	"pode listar os cargos disponíveis?",
	"mostrar todas as vagas",
	"ver lista de vagas",
	"ver posições disponíveis",
	"há algo aberto no momento?",
	"tem alguma posição ativa?",
}

// ListJobsIntros introduce the job listing.
var ListJobsIntros = []string{
	"Claro, aqui estão as vagas que estamos em aberto:",
	"Aqui está a lista das oportunidades atuais:",
	"Essas são as vagas disponíveis no momento:",
	"Veja abaixo os processos em aberto que temos atualmente:",
	"Aqui estão as oportunidades que estão abertas no momento:",
}

// JobDetailIntros introduce a job-detail reply.
var JobDetailIntros = []string{
	"Aqui estão os detalhes da vaga que você selecionou:",
	"Confira as informações completas sobre a vaga:",
	"Detalhes sobre a vaga escolhida:",
	"Segue uma descrição detalhada da vaga:",
	"Aqui estão as informações que você solicitou para esta vaga:",
}
