package gemini

import "fmt"

func buildAnswerPrompt(contextText, question string) string {
	return fmt.Sprintf(`You are a helpful medical assistant. Your task is to answer the user's question based *only* on the provided context.

IMPORTANT GUIDELINES:
- Be concise and to the point.
- If the context does not contain the answer, state that you don't have enough information.
- Do not make up information.
- Base your answer strictly on the context provided.

CONTEXT:
%s

USER QUESTION:
%s

Please provide a clear and accurate answer based on the context above.`, contextText, question)
}

func buildVisionPrompt(contextText, question string) string {
	return fmt.Sprintf(`You are a helpful medical assistant analyzing medical images.

CONTEXT FROM KNOWLEDGE BASE:
%s

USER QUESTION:
%s

Please analyze the image and provide insights based on:
1. What you observe in the image
2. Relevant medical information from the context provided
3. Any potential concerns or observations

Be clear that you're an AI assistant and recommend consulting healthcare professionals for proper diagnosis.`, contextText, question)
}
