package skills

import "strings"

// englishStopWords is the common English function-word list.
const englishStopWords = `a about above after again against all am an and any are as at be because been
before being below between both but by can could did do does doing down during each few for from
further had has have having he her here hers herself him himself his how i if in into is it its
itself just me more most my myself no nor not now of off on once only or other our ours ourselves
out over own same she should so some such than that the their theirs them themselves then there
these they this those through to too under until up very was we were what when where which while
who whom why will with would you your yours yourself yourselves`

// frenchStopWords is the common French function-word list, accented and unaccented.
const frenchStopWords = `au aux avec ce ces dans de des du elle en et eux il ils je la le les leur lui
ma mais me même meme mes moi mon ne nos notre nous on ou où par pas pour qu que qui sa se ses son
sur ta te tes toi ton tu un une vos votre vous c d j l à a m n s t y été ete étée étées étés étant
suis es est sommes êtes sont serai sera serons seront serais serait étais était étions étiez
étaient fus fut avoir ai as avons avez ont aurai aura aurons auront avais avait avions aviez
avaient eu cette cet ceci cela ça comme plus très tres sans sous chez entre vers`

var stopWords = buildStopWords(englishStopWords, frenchStopWords)

func buildStopWords(lists ...string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, list := range lists {
		for _, w := range strings.Fields(list) {
			set[w] = struct{}{}
		}
	}
	return set
}

// IsStopWord reports whether a lower-case token is an English or French function word.
func IsStopWord(token string) bool {
	_, ok := stopWords[token]
	return ok
}
