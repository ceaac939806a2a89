package mcpserver

// CheatsheetFormat describes how Cognitio reads a cheatsheet, so that LLM
// consumers can write files that show up correctly in the viewer.
const CheatsheetFormat = `# Cognitio Cheatsheet Format

A cheatsheet is a UTF-8 Markdown file (` + "`" + `.md` + "`" + `) inside one of the
configured cheatsheet roots. Dot-prefixed files and directories are ignored.

## Structure

` + "```" + `markdown
---
title: Human-readable title        # OPTIONAL - overrides the H1 heading
tags:                               # OPTIONAL - YAML list
  - shell
---

# Title used when frontmatter has none

### First card
Content of the first card.

### Second card
More content. Inline #tags are collected too.
` + "```" + `

## Rules

1. **Title** comes from the frontmatter ` + "`" + `title` + "`" + `, then the first H1
   heading, then the file name without its extension.
2. **Sections** are level-3 headings (` + "`" + `###` + "`" + `). Each one becomes a card.
3. **Tags** come from the frontmatter ` + "`" + `tags` + "`" + ` list and from ` + "`" + `#tag` + "`" + `
   words in the prose.
4. Headings and tags inside fenced code blocks are ignored.
5. Files nested deeper than one directory below a root are still indexed and
   searchable, but the tree only shows two levels.

## Shorthand ids

Every directory and file gets a shorthand id built from the first two letters
of the last path components, lowercased: directories use two components and
files three (` + "`" + `Sheets/Bash/Variables.md` + "`" + ` is ` + "`" + `shbava` + "`" + `).
Ids can collide; lookups return every match.
`
