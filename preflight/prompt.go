package preflight

import (
	"strings"
	"text/template"
)

// Writer prompt rendered from the finished plan. Swedish, since that is the
// language the writers deliver in.
const writerPromptTemplate = `# Skrivuppdrag {{.OrderRef}}

Skriv en artikel för {{.PublicationDomain}} på cirka {{.WordCount}} ord i {{.Tone}} ton.

## Ämne
Sökfraser: {{join .QueryCluster ", "}}
Vinkel: {{.Chosen.Label}} – {{.Chosen.Rationale}}

## Länk
Placera länken [[{{.AnchorPlan.Primary}}]] (mål: {{.TargetURL}}) i artikelns {{.AnchorPlan.Placement.Section}}, stycke {{.AnchorPlan.Placement.Paragraph}}.
Reservtext om den primära inte passar: {{.AnchorPlan.Backup}}
Länktexten får aldrig stå i en rubrik.

## Stödord
Använd minst {{.LSIWindow.Policy.Min}} av följande termer inom {{.LSIWindow.Policy.RadiusSentences}} meningar från länken (max {{.LSIWindow.Policy.Max}}, upprepa ingen term mer än {{.LSIWindow.Policy.MaxRepeat}} gånger):
{{range .LSIWindow.Terms}}- {{.}}
{{end}}
## Källor
Referera till minst en av följande:
{{range .Trust}}- {{.Domain}} ({{.Level}}): {{.Rationale}}
{{end}}{{if .Guards.Compliance}}
## Obligatoriska disclaimers
{{range .Guards.Compliance}}- {{.}}
{{end}}{{end}}`

var promptTmpl = template.Must(template.New("writer_prompt").
	Funcs(template.FuncMap{"join": strings.Join}).
	Parse(writerPromptTemplate))

func renderWriterPrompt(plan *Plan) (string, error) {
	var sb strings.Builder
	if err := promptTmpl.Execute(&sb, plan); err != nil {
		return "", err
	}
	return sb.String(), nil
}
