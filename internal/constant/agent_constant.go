package constant

const (
	ChatMessageRoleUser  = "user"
	ChatMessageRoleModel = "model"

	// Watermill topics
	TopicEmbedFile = "embed_file_topic"
)
