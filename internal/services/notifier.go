package services

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/kinhub/kinhub/internal/email"
	"github.com/kinhub/kinhub/internal/events"
	"github.com/kinhub/kinhub/internal/models"
	"github.com/kinhub/kinhub/internal/repository"
	"github.com/kinhub/kinhub/internal/tasks"
	"github.com/kinhub/kinhub/internal/ws"
)

// Notifier delivers the fire-and-forget side effects of a successful write:
// socket fan-out to the family room, notification rows, emails to the other
// members, and an optional Kafka mirror. Everything goes through the task
// queue after the document write commits; failures are logged, never
// surfaced to the HTTP caller.
type Notifier struct {
	Queue     *tasks.Queue
	Hub       *ws.Hub
	Email     email.Sender
	Users     *repository.UserRepo
	Notifs    *repository.NotificationRepo
	Events    *events.Publisher
	ClientURL string
	Logger    *zap.SugaredLogger
}

func (n *Notifier) MemoryCreated(family *models.Family, actor *models.User, memory *models.Memory) {
	subject, html := email.NewMemoryEmail(actor.Name, memory.Title, family.Name, n.ClientURL)
	n.fanOut(family, actor, ws.EventNewMemory, memory, subject, html)
}

func (n *Notifier) EventCreated(family *models.Family, actor *models.User, event *models.Event) {
	subject, html := email.NewEventEmail(actor.Name, event.Title, family.Name, n.ClientURL)
	n.fanOut(family, actor, ws.EventNewEvent, event, subject, html)
}

func (n *Notifier) MemberAdded(family *models.Family, actor *models.User, member *models.Member) {
	subject, html := email.NewMemberEmail(member.Name, family.Name, n.ClientURL)
	n.fanOut(family, actor, ws.EventNewMember, member, subject, html)
}

// MessageSent fans out over the socket and records notifications, but does
// not email: chat is too chatty for inboxes.
func (n *Notifier) MessageSent(family *models.Family, actor *models.User, msg *models.Message) {
	n.fanOut(family, actor, ws.EventMessageReceived, msg, "", "")
}

func (n *Notifier) fanOut(family *models.Family, actor *models.User, kind string, payload any, subject, html string) {
	familyID := family.ID.Hex()

	n.Queue.Enqueue("ws:"+kind, func(ctx context.Context) error {
		n.Hub.Broadcast(familyID, kind, payload)
		return nil
	})

	n.Queue.Enqueue("events:"+kind, func(ctx context.Context) error {
		n.Events.Publish(ctx, events.Event{
			Type:     kind,
			FamilyID: familyID,
			ActorID:  actor.ID.Hex(),
			Payload:  payload,
		})
		return nil
	})

	// Snapshot recipients now; the task runs after the request ends.
	recipients := make([]models.FamilyMember, 0, len(family.Members))
	for _, m := range family.Members {
		if m.UserID != actor.ID {
			recipients = append(recipients, m)
		}
	}
	if len(recipients) == 0 {
		return
	}

	n.Queue.Enqueue("notify:"+kind, func(ctx context.Context) error {
		notifs := make([]models.Notification, 0, len(recipients))
		for _, m := range recipients {
			notifs = append(notifs, models.Notification{
				UserID:   m.UserID,
				FamilyID: family.ID,
				Kind:     kind,
			})
		}
		if err := n.Notifs.CreateMany(ctx, notifs); err != nil {
			n.Logger.Warnw("notification insert failed", "kind", kind, "error", err)
		}

		if subject == "" {
			return nil
		}
		userIDs := make([]primitive.ObjectID, 0, len(recipients))
		for _, m := range recipients {
			userIDs = append(userIDs, m.UserID)
		}
		users, err := n.Users.FindByIDs(ctx, userIDs)
		if err != nil {
			return err
		}
		for _, u := range users {
			if err := n.Email.Send(ctx, u.Email, subject, html); err != nil {
				n.Logger.Warnw("notification email failed", "to", u.Email, "error", err)
			}
		}
		return nil
	})
}
