//go:build wireinject
// +build wireinject

package di

import (
	"github.com/google/wire"

	"uslugo/internal/chat"
	"uslugo/internal/config"
	"uslugo/internal/listing"
	"uslugo/internal/realtime"
	"uslugo/internal/user"
)

// InitializeAPI builds the API application graph. Wire generates the
// real body in wire_gen.go.
func InitializeAPI() (*Application, func(), error) {
	wire.Build(
		config.Load,
		ProvideDB,
		realtime.NewHub,

		user.NewProfileRepository,
		user.NewService,
		user.NewHandler,

		listing.NewPostRepository,
		listing.NewCategoryRepository,
		listing.NewService,
		listing.NewHandler,

		chat.NewConversationRepository,
		chat.NewMessageRepository,
		chat.NewUnreadResolver,
		chat.NewChatService,
		chat.NewHandler,

		wire.Bind(new(chat.PostLookup), new(listing.PostRepository)),
		wire.Bind(new(chat.ProfileLookup), new(user.ProfileRepository)),
		wire.Bind(new(chat.UnreadCounter), new(*chat.UnreadResolver)),

		NewRouter,
		wire.Struct(new(Application), "*"),
	)
	return &Application{}, nil, nil
}
