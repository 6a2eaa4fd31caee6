package agent

const writeTodosSystemPrompt = `## ` + "`write_todos`" + `

You have access to the write_todos tool to plan and track multi-step work.
Use it for complex objectives so progress stays visible. Mark each todo completed as soon as it is done; do not batch completions.
For simple requests that take only a few steps, skip the todo list and just do the work.`

const filesystemSystemPrompt = `## Filesystem Tools ` + "`ls`, `read_file`, `write_file`, `edit_file`" + `

You have access to a filesystem you interact with through these tools. All file paths must start with a "/".
- ls: list files in a directory
- read_file: read a file, optionally a window of lines
- write_file: create a new file (existing files are never overwritten)
- edit_file: replace exact strings in an existing file`

const memoriesSystemPrompt = `Files under /memories/ persist across runs. Check them for saved context before starting, and save anything worth keeping there.`

const taskSystemPrompt = `## ` + "`task`" + ` (subagent spawner)

You have access to a task tool that launches short-lived subagents for isolated tasks.
A subagent starts with no history: give it a complete, self-contained description and say exactly what it should return.
Launch independent tasks in the same turn so they run in parallel. The subagent's final message is returned to you as the tool result; the user never sees it directly, so summarize what matters.`

const generalPurposeDescription = "General-purpose agent for researching complex questions, searching for files and content, and executing multi-step tasks. It has access to all tools of the main agent."

const generalPurposeSystemPrompt = "In order to complete the objective that the user asks of you, you have access to a number of standard tools."
