package mcpserver

// ContentFormatContract describes the canonical Markdown page format that
// LLM consumers should follow when creating or updating content.
const ContentFormatContract = `# Arbor Content Format Contract

Every Markdown page stored in Arbor MUST follow this structure.

## Structure

` + "```" + `markdown
---
title: Human-readable title        # REQUIRED – used in search, lists, graph
tags:                               # OPTIONAL – YAML list; used for filtering
  - tag-one
  - tag-two
status: published                   # OPTIONAL – published (default) or draft
created: 2026-01-15                 # OPTIONAL – ISO-8601 date or datetime
---

Body text in standard Markdown.

Use [[wikilinks]] to reference other pages (without .md extension).
Standard Markdown links to internal pages also work: [text](notes/target.md).
` + "```" + `

## Rules

1. **Sections.** Pages live under one of three section directories:
   ` + "`" + `notes/` + "`" + `, ` + "`" + `bookmarks/` + "`" + `, or ` + "`" + `til/` + "`" + `. Pages outside a known section
   are treated as notes.
2. **YAML frontmatter is recommended.** When present, the ` + "```" + `---` + "```" + ` fences
   must be the first thing in the file (no leading blank lines). Without
   frontmatter, the first H1 heading becomes the title.
3. **Slugs** are derived from the filename: lowercased, spaces become
   hyphens, ` + "`" + `.md` + "`" + ` stripped. Link targets resolve against slugs, so
   ` + "`" + `[[My Page]]` + "`" + ` matches ` + "`" + `my-page.md` + "`" + `.
4. **Tags** are lowercase, kebab-case (e.g. ` + "`" + `digital-garden` + "`" + `, ` + "`" + `til` + "`" + `).
5. **Wikilinks** use double brackets: ` + "`" + `[[other-page]]` + "`" + `. The target is the
   filename stem (no ` + "`" + `.md` + "`" + ` extension).
6. **Drafts** (` + "`" + `status: draft` + "`" + ` or ` + "`" + `draft: true` + "`" + `) are indexed but meant
   to be excluded from public rendering.
7. **File paths** end with ` + "`" + `.md` + "`" + ` and use forward slashes.
8. **Encoding** is UTF-8 with a trailing newline.

## Assets & Images

- Upload assets via the ` + "`" + `upload_asset` + "`" + ` tool. It returns a ` + "`" + `markdownImage` + "`" + ` field ready to paste into the page body.
- Assets are stored in the shared ` + "`" + `assets/` + "`" + ` directory (flat, no sub-folders).
- Reference in pages using the absolute path: ` + "`" + `![description](/assets/filename.png)` + "`" + `
- Supported formats: png, jpg, jpeg, gif, webp, svg, pdf.
- Do **not** use relative paths like ` + "`" + `./assets/...` + "`" + ` — always use ` + "`" + `/assets/filename` + "`" + `.

## Example

` + "```" + `markdown
---
title: Growing a link graph
tags:
  - digital-garden
  - graphs
status: published
created: 2026-01-20
---

# Growing a link graph

Start from [[gardening-basics]] and follow the backlinks.

![Graph sketch](/assets/link-graph-sketch.png)

## See also

- [[orphaned-pages]]
- [Link extraction](notes/link-extraction.md)
` + "```" + `
`
