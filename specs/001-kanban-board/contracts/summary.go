package contracts

// Summarization call.
//
// Provider: Anthropic Messages API over net/http
//   POST {base_url}/v1/messages
//   Headers: x-api-key, anthropic-version: 2023-06-01
//   Body: { model, max_tokens, messages: [{ role: "user", content: [text] }] }
//   Reply: text blocks are joined into the summary.
//
// Input:
//   Open tasks only (status Todo or InProgress), name and description.
//   No open tasks -> "No open tasks to summarize." without a network call.
//
// API key:
//   ANTHROPIC_API_KEY, then the OS keyring entry "claude-api-key"
//   (taskboard api-key set <key>). Missing key -> panel explains how to
//   configure one; the board keeps working.
//
// Failure:
//   Any transport or API error -> "Failed to generate task summary. Please
//   try again." The panel offers a retry. Replies to a superseded request
//   are dropped by sequence number.
