// Package tools defines the Tool interface for LLM agents, including registration and
// parameter schema generation. Tools enable agents to interact with files, documents,
// spreadsheets and the web in a structured, extensible way.
package tools
