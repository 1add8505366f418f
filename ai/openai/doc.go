// Package openai implements ai.Embedder against OpenAI-compatible
// embedding APIs via langchaingo. It works with the hosted OpenAI API and
// with local OpenAI-compatible services (Ollama, LocalAI, vLLM).
package openai
