package riskmodel

import (
	"strings"

	"github.com/brianvoe/gofakeit/v6"
)

var (
	riskFragments = []string{
		"I want to die",
		"I can't go on anymore",
		"nothing feels worth it anymore",
		"I'm so tired of everything",
		"I want to end my life",
		"no one would miss me if I was gone",
		"I feel hopeless and empty inside",
		"I keep thinking about killing myself",
		"I just want the pain to stop forever",
		"I wrote a goodbye note last night",
	}
	neutralFragments = []string{
		"Life is good",
		"I am happy today",
		"I spent the afternoon with my friends",
		"work was fun and productive",
		"I love my family so much",
		"went for a long run this morning",
		"cooked a great dinner and laughed a lot",
		"looking forward to the weekend trip",
		"my exam went better than expected",
		"the sunset at the beach was beautiful",
	}
)

// SyntheticExamples generates a labeled journal-like corpus for smoke-testing the training
// flow without the real dataset. positiveShare is the fraction of "suicide" examples.
func SyntheticExamples(faker *gofakeit.Faker, n int, positiveShare float64) []Example {
	examples := make([]Example, n)
	positives := int(float64(n) * positiveShare)

	for i := range examples {
		label := 0
		fragments := neutralFragments
		if i < positives {
			label = 1
			fragments = riskFragments
		}

		parts := []string{
			faker.RandomString(fragments),
			faker.HipsterSentence(faker.Number(3, 8)),
			faker.RandomString(fragments),
		}
		faker.ShuffleStrings(parts)

		examples[i] = Example{Text: strings.Join(parts, ". "), Label: label}
	}

	faker.ShuffleAnySlice(examples)
	return examples
}
