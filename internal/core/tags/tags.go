// Package tags canonicalizes tag and filter strings and holds the static rule
// tables used by the search engine.
package tags

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// NormalizeTag maps s to its canonical key: trimmed, lowercased, without
// diacritics, runs of whitespace or hyphens turned into one underscore and
// anything outside [a-z0-9_] dropped. NormalizeTag(NormalizeTag(s)) equals
// NormalizeTag(s).
func NormalizeTag(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))

	// A fresh transformer per call; transform.Chain is stateful.
	stripMarks := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)))
	if stripped, _, err := transform.String(stripMarks, s); err == nil {
		s = stripped
	}

	var b strings.Builder
	b.Grow(len(s))
	inSep := false
	for _, r := range s {
		if unicode.IsSpace(r) || r == '-' {
			if !inSep {
				b.WriteByte('_')
				inSep = true
			}
			continue
		}
		inSep = false
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// FormatTag returns the display label for tag. Curated labels win; any
// other tag is shown with underscores as spaces and its first letter
// capitalized.
func FormatTag(tag string) string {
	if label, ok := labels[NormalizeTag(tag)]; ok {
		return label
	}

	s := strings.ReplaceAll(strings.TrimSpace(tag), "_", " ")
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// Label reports the curated label for key, if any.
func Label(key string) (string, bool) {
	l, ok := labels[key]
	return l, ok
}

var labels = map[string]string{
	// places
	"por_do_sol":     "Pôr do sol",
	"pet_friendly":   "Pet friendly",
	"familia":        "Família",
	"romantico":      "Romântico",
	"gratis":         "Grátis",
	"trilha":         "Trilha",
	"cultura":        "Cultura",
	"historia":       "História",
	"natureza":       "Natureza",
	"gastronomia":    "Gastronomia",
	"criancas":       "Crianças",
	"acessivel":      "Acessível",
	"estacionamento": "Estacionamento",
	"fim_de_semana":  "Fim de semana",

	// cars
	"unico_dono":     "Único dono",
	"baixo_km":       "Baixa km",
	"baixa_km":       "Baixa km",
	"ipva_ok":        "IPVA OK",
	"pneus_novos":    "Pneus novos",
	"concessionaria": "Concessionária",
	"particular":     "Particular",
	"financiamento":  "Financiamento",
	"troca":          "Aceita troca",
	"revisado":       "Revisado",
	"garantia":       "Garantia",
	"economico":      "Econômico",
	"blindado":       "Blindado",
	"diesel":         "Diesel",

	// jobs
	"home_office":      "Home office",
	"sem_experiencia":  "Sem experiência",
	"primeiro_emprego": "Primeiro emprego",
	"meio_periodo":     "Meio período",
	"vaga_pcd":         "Vaga PCD",
	"urgente":          "Urgente",
	"comissao":         "Comissão",
	"beneficios":       "Benefícios",
	"noturno":          "Noturno",
	"clt":              "CLT",
	"pj":               "PJ",
	"estagio":          "Estágio",
	"freelancer":       "Freelancer",
	"presencial":       "Presencial",
	"hibrido":          "Híbrido",
	"remoto":           "Remoto",

	// real estate
	"mobiliado":     "Mobiliado",
	"semimobiliado": "Semimobiliado",
	"vazio":         "Vazio",
	"portaria_24h":  "Portaria 24h",
	"condominio":    "Condomínio",
	"varanda":       "Varanda",
	"piscina":       "Piscina",
	"academia":      "Academia",
	"churrasqueira": "Churrasqueira",
	"proximo_metro": "Próximo ao metrô",
	"novo":          "Novo",
	"reformado":     "Reformado",
	"alugar":        "Alugar",
	"comprar":       "Comprar",
	"apartamento":   "Apartamento",
	"casa":          "Casa",
	"kitnet":        "Kitnet",
	"terreno":       "Terreno",
	"comercial":     "Comercial",

	// general
	"entrega":       "Entrega",
	"whatsapp":      "WhatsApp",
	"site":          "Site",
	"bem_avaliado":  "Bem avaliado",
	"aberto_agora":  "Aberto agora",
	"aceita_cartao": "Aceita cartão",
	"agendamento":   "Agendamento",
	"verificado":    "Verificado",
}
