package extractintent

import "strings"

// promptTemplate is kept byte-stable so that identical utterances produce
// identical prompts. %UTTERANCE% is replaced verbatim.
const promptTemplate = `You are an assistant specialised in e-commerce product search.
Analyse this customer request: "%UTTERANCE%"

EXTRACT the following information:
1. The type of product being searched for (e.g. 'shoes', 'laptop', 'book'), in the customer's language
2. The maximum budget, only if it is explicitly stated (a number only, no currency)

Respond ONLY with a JSON object with exactly this structure, and nothing else:
{
  "search": "main search term",
  "max_price": number or null
}

Examples:
- "Je cherche des chaussures de sport à moins de 100€" => {"search": "chaussures de sport", "max_price": 100}
- "Montre-moi des téléphones" => {"search": "téléphone", "max_price": null}
- "I need a laptop under 800 dollars" => {"search": "laptop", "max_price": 800}
- "Bonjour" => {"search": "", "max_price": null}
`

// BuildPrompt embeds the utterance into the fixed instruction template.
func BuildPrompt(utterance string) string {
	return strings.Replace(promptTemplate, "%UTTERANCE%", utterance, 1)
}
