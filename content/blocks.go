package content

import "strings"

// ConvertBlocks renders blocks to markdown in input order. Unknown block
// types produce no output.
func ConvertBlocks(blocks []Block) string {
	var b strings.Builder
	for _, blk := range blocks {
		b.WriteString(RenderBlock(blk))
	}
	return b.String()
}

// RenderBlock returns the markdown fragment for a single block.
func RenderBlock(blk Block) string {
	text := strings.Join(blk.Text, "")
	switch blk.Type {
	case BlockParagraph:
		if len(blk.Text) == 0 {
			return "\n"
		}
		return text + "\n\n"
	case BlockHeading1:
		return "# " + text + "\n\n"
	case BlockHeading2:
		return "## " + text + "\n\n"
	case BlockHeading3:
		return "### " + text + "\n\n"
	case BlockBulletedItem:
		return "- " + text + "\n"
	case BlockNumberedItem:
		return "1. " + text + "\n"
	case BlockCode:
		return "```" + blk.Language + "\n" + text + "\n```\n\n"
	case BlockQuote:
		return "> " + text + "\n\n"
	case BlockDivider:
		return "---\n\n"
	case BlockImage:
		return renderImage(blk.Image)
	default:
		return ""
	}
}

func renderImage(img *Image) string {
	if img == nil {
		return ""
	}
	var url string
	switch img.Hosting {
	case HostingExternal:
		url = img.ExternalURL
	case HostingFile:
		url = img.FileURL
	default:
		return ""
	}
	caption := ""
	if len(img.Caption) > 0 {
		caption = img.Caption[0]
	}
	return "![" + caption + "](" + url + ")\n\n"
}
