package analyzers

const summaryPromptTemplate = `
Summarize the journal entry below in a single short paragraph of at most {{.MaxWords}} words.
Keep the writer's point of view and do not add advice or information that is not in the entry.
Reply with the summary only.

Journal entry:
{{.Input}}

Summary:
`

type SummaryPromptTemplateData struct {
	Input    string
	MaxWords int
}
