package constants

const (
	MaxTitleLength       = 256     // Discord embed title limit
	MaxDescriptionLength = 4000    // leaves room for the submitted-from line inside the 4096 embed limit
	MaxAttachmentSize    = 8 << 20 // 8 MiB, Discord webhook upload limit
)

const EmbedColor = 0x3498DB

const (
	FallbackTitle       = "Uploaded Image"
	FallbackDescription = "Image attached"
)
