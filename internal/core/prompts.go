// ABOUTME: Prompt templates for the search decision, query construction and augmented question
// ABOUTME: Each template takes its inputs through fmt verbs in a fixed order
package core

import (
	"fmt"
	"strings"
)

const searchDecisionPrompt = `You are an assistant for an e-commerce web site.
Consider the last message of the conversation:
---
%s
---

Do we need to search the database of products to answer this query?

Answer "yes" or "no" in lower case.`

const composeQueryPrompt = `You are an assistant for an e-commerce web site.
Consider the following conversation:
---
%s
---
Construct a query that will be later embedded and used to search for
relevant results in vector database of product descriptions. Here is an
example of a product description:
---
Your perfect pack for everyday use and walks in the forest. Stash your laptop (up to 15 inches) in the padded sleeve, your everyday
---
Reply with the query only.`

const augmentedQuestionPrompt = `You are an assistant for an e-commerce web site.
In addition to the last question from the user:
---
%s
---
Here are the search results from the database of products:
---
%s
---`

func renderSearchDecision(content string) string {
	return fmt.Sprintf(searchDecisionPrompt, content)
}

func renderComposeQuery(historyText string) string {
	return fmt.Sprintf(composeQueryPrompt, historyText)
}

// renderAugmentedQuestion joins results with blank lines under the user's question
func renderAugmentedQuestion(question string, results []string) string {
	return fmt.Sprintf(augmentedQuestionPrompt, question, strings.Join(results, "\n\n"))
}
