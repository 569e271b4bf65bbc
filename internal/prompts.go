package internal

// PromptCategory groups example prompts shown on an empty chat
type PromptCategory struct {
	Title   string
	Icon    string
	Prompts []string
}

// SuggestedPrompts are numbered 1..12 in display order so the REPL can send one by index
var SuggestedPrompts = []PromptCategory{
	{
		Title: "Creative Corner",
		Icon:  "✏️",
		Prompts: []string{
			"Write a short story about a robot who discovers music",
			"Compose a poem about a city at night",
			"Suggest a plot for a sci-fi movie",
		},
	},
	{
		Title: "Brain Boost",
		Icon:  "💡",
		Prompts: []string{
			"Explain quantum computing in simple terms",
			"What are the main causes of climate change?",
			"Summarize the history of the internet",
		},
	},
	{
		Title: "Daily Life",
		Icon:  "🏠",
		Prompts: []string{
			"What's a good recipe for a quick dinner?",
			"Give me a 30-minute workout plan",
			"How can I improve my sleep quality?",
		},
	},
	{
		Title: "Visual Creator",
		Icon:  "🖼️",
		Prompts: []string{
			"/imagine a majestic lion with a crown of stars",
			"/imagine a futuristic city skyline at sunset",
			"/imagine a serene Japanese garden with a koi pond",
		},
	},
}

// SuggestedPrompt returns the n-th prompt (1-based) across all categories
func SuggestedPrompt(n int) (string, bool) {
	if n < 1 {
		return "", false
	}
	i := 1
	for _, category := range SuggestedPrompts {
		for _, prompt := range category.Prompts {
			if i == n {
				return prompt, true
			}
			i++
		}
	}
	return "", false
}
