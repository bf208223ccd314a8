package podcast

import "fmt"

// MaxAnswerLines 是回答脚本的最大台词数。
const MaxAnswerLines = 8

func scriptPrompt(transcript string) string {
	return fmt.Sprintf(`## TASK
You are a podcast script generator. Convert the following text into a two-person conversational podcast script.

## CONTEXT
The script must cover ALL key ideas from the original text.
*Original Text:*
"""
%s
"""

## STRICT OUTPUT FORMAT
- Generate ONLY the raw dialogue strings, one per line.
- NO speaker labels (e.g., "Host 1:").
- Each dialogue line MUST be on a new line.
- Alternate speakers, starting with Host 1.
- Do not shorten the conversation to save space; cover every topic, however long it takes.
- Do not add filler or unrelated material.
`, transcript)
}

func answerPrompt(question string) string {
	return fmt.Sprintf(`## TASK
Generate a SHORT two-person conversation where both hosts directly answer a listener's question.

## CONTEXT
A listener has asked this question during the podcast:
*Question:*
"""
%s
"""

## STRICT OUTPUT FORMAT
- Generate ONLY the raw dialogue strings, one per line.
- NO speaker labels (e.g., "Host 1:").
- Each dialogue line MUST be on a new line.
- Alternate speakers, starting with Host 1.
- 6 to %d lines total.

## CONVERSATION STYLE
- Host 1: Briefly acknowledge and start answering ("Great question! The answer is...")
- Host 2: Continue or add to the answer ("Exactly, and I'd add that...")
- Host 1: Provide additional detail or example ("For instance...")
- Host 2: Conclude the answer ("So in summary..." or "Hope that helps!")

## CRITICAL RULES
- NO new questions from either host.
- NO "What do you think?" or similar question prompts.
- ONLY provide direct answers to the specific question.
- Keep it conversational but focused on answering.
- End definitively, don't open new discussion topics.
`, question, MaxAnswerLines)
}
