package services

import (
	"fmt"
	"strings"

	"github.com/ye11ow-banana/main-be/config"
)

func imagePrompt(identities []config.Identity) string {
	var rows strings.Builder
	for _, id := range identities {
		fmt.Fprintf(&rows, "   - the row labeled '%s' belongs to %s\n", id.Tag, id.Name)
	}
	return `You are reading a handwritten food table.

Steps:
1) The top row holds product column headers written in Ukrainian.
2) Person rows:
` + rows.String() + `3) For every header take only the cells of the person rows under it.
   A header with all of its person cells empty is skipped.

Rules:
- A cell holds grams: one integer ("40") or integers joined by '+' ("40+59").
- Copy sums exactly as written. Do not add them up.
- Emit only cells that are clearly grams.
- An unreadable cell goes to warnings; text you could not place goes to unparsed.
- Ignore totals and notes outside the grid.
- Answer strictly with JSON matching the schema.`
}

func textPrompt(identities []config.Identity, userText string) string {
	var tags strings.Builder
	for _, id := range identities {
		fmt.Fprintf(&tags, "- \"%s:\" starts the items of %s\n", id.Tag, id.Name)
	}
	return `Turn the user's note into food items with grams.

The note may list several persons:
` + tags.String() + `Everything after a tag belongs to that person until the next tag.

raw_name is the bare base product or dish, used for catalog lookup:
- drop sizes and amounts ("30 см", "1 л", "200 г")
- drop brands ("coca-cola" becomes "кола")
- drop flavors and variants ("піца гавайська" becomes "піца")

weight is grams only:
- 1 ml counts as 1 g
- pieces, bowls and portions are estimated as edible grams

Answer strictly with JSON matching the schema.

USER_TEXT:
` + userText
}

func nutritionPrompt(rawNames []string) string {
	var b strings.Builder
	for _, n := range rawNames {
		b.WriteString("- ")
		b.WriteString(n)
		b.WriteByte('\n')
	}
	return `You are a nutrition assistant.
For each raw_name return it unchanged in raw_name, a short generic Ukrainian
product name in name (no size, brand, flavor or variant) and typical values
per 100 g: proteins, fats, carbs and calories (kcal).
Drinks are also per 100 g with 1 ml counted as 1 g.
Do not invent brands. Answer strictly with JSON matching the schema.

RAW_NAMES:
` + b.String()
}
