package bot

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"

	"amazonlinkbot/internal/amazon"
	"amazonlinkbot/internal/llm"
	"amazonlinkbot/internal/storage"
)

// BotAPI defines the interface for Telegram bot API operations.
type BotAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetFileDirectURL(fileID string) (string, error)
}

// Bot is the main Telegram bot handler.
type Bot struct {
	tg         BotAPI
	state      BotState
	store      storage.SessionStore
	analyzer   *llm.ProductAnalyzer
	links      *amazon.Builder
	region     amazon.Region
	downloader *PhotoDownloader
}

// NewBot creates a new Bot instance.
func NewBot(tg BotAPI, store storage.SessionStore, analyzer *llm.ProductAnalyzer, links *amazon.Builder, region amazon.Region) *Bot {
	bot := &Bot{
		tg:         tg,
		store:      store,
		analyzer:   analyzer,
		links:      links,
		region:     region,
		downloader: NewPhotoDownloader(),
	}

	bot.state = bot.NewBotState()

	return bot
}

// HandleUpdate is the main message router.
// It dispatches messages to the appropriate session worker for sequential processing.
func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	b.dispatchUpdate(ctx, update, false)
}

// handleUpdateSync is like HandleUpdate but waits for message processing to complete.
// Used in tests where we need synchronous behavior.
func (b *Bot) handleUpdateSync(ctx context.Context, update tgbotapi.Update) {
	b.dispatchUpdate(ctx, update, true)
}

// dispatchUpdate routes updates to the appropriate session worker.
// If sync is true, it waits for message processing to complete.
func (b *Bot) dispatchUpdate(ctx context.Context, update tgbotapi.Update, sync bool) {
	var userId int64

	// Determine user ID from the update
	if update.CallbackQuery != nil {
		userId = update.CallbackQuery.From.ID
	} else if update.Message != nil {
		userId = update.Message.From.ID
	} else {
		return
	}

	session := b.state.getUserSession(userId)

	// Helper to send sync or async based on flag
	send := func(msg SessionMessage) {
		if sync {
			session.SendSync(msg)
		} else {
			session.Send(msg)
		}
	}

	// Dispatch to session worker based on update type
	if update.CallbackQuery != nil {
		send(SessionMessage{
			Type:          "callback",
			Ctx:           ctx,
			CallbackQuery: update.CallbackQuery,
		})
		return
	}

	if update.Message != nil {
		log.Info().Str("text", update.Message.Text).Msg("got message")

		if len(update.Message.Photo) > 0 {
			send(SessionMessage{
				Type:    "photo",
				Ctx:     ctx,
				Message: update.Message,
			})
		} else {
			send(SessionMessage{
				Type:    "text",
				Ctx:     ctx,
				Message: update.Message,
			})
		}
	}
}

// HandleSessionMessage implements MessageHandler interface.
// This is called by the session worker goroutine for sequential processing.
// No mutex locking is needed here since only one goroutine accesses session state.
func (b *Bot) HandleSessionMessage(ctx context.Context, session *UserSession, msg SessionMessage) {
	switch msg.Type {
	case "callback":
		b.handleCallbackQuery(ctx, session, msg.CallbackQuery)
	case "photo":
		b.handlePhotoMessage(ctx, session, msg.Message)
	case "text":
		b.handleTextMessage(ctx, session, msg.Message)
	}
}

// language returns the user's stored language preference, or "" if the user
// has not picked one yet.
func (b *Bot) language(userId int64) string {
	code, err := b.store.GetLanguage(userId)
	if err != nil {
		log.Warn().Err(err).Int64("userId", userId).Msg("failed to load language preference")
		return ""
	}
	return code
}

// handleTextMessage processes text messages.
// Called from session worker - no locking needed.
func (b *Bot) handleTextMessage(ctx context.Context, session *UserSession, message *tgbotapi.Message) {
	command, args := parseCommand(message.Text)
	switch command {
	case "/start":
		b.handleStartCommand(session)
	case "/help":
		session.reply(MsgHelp)
	case "/link":
		b.handleLinkCommand(session, strings.Join(args, " "))
	default:
		// Anything else gets the onboarding prompt
		b.handleStartCommand(session)
	}
}

// handleStartCommand sends the welcome message with the language picker.
func (b *Bot) handleStartCommand(session *UserSession) {
	msg := tgbotapi.NewMessage(session.userId, formatReplyText(MsgWelcome))
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.ReplyMarkup = makeLanguageKeyboard()
	session.replyWithMessage(msg)
}

// makeLanguageKeyboard builds the inline language picker. English and Arabic
// share the first row, French gets the second.
func makeLanguageKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(BtnLangEnglish, CallbackLangPrefix+string(LangEnglish)),
			tgbotapi.NewInlineKeyboardButtonData(BtnLangArabic, CallbackLangPrefix+string(LangArabic)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(BtnLangFrench, CallbackLangPrefix+string(LangFrench)),
		),
	)
}

// handleLinkCommand handles /link <product name>.
func (b *Bot) handleLinkCommand(session *UserSession, args string) {
	product := strings.TrimSpace(args)
	if product == "" {
		session.reply(MsgLinkUsage)
		return
	}

	link := b.links.Build(product, b.region)
	session.reply(MsgLinkResultFmt, product, link)
}

// handleCallbackQuery handles inline keyboard button presses.
// Called from session worker - no locking needed.
func (b *Bot) handleCallbackQuery(ctx context.Context, session *UserSession, query *tgbotapi.CallbackQuery) {
	// Answer the callback to remove the loading state
	callback := tgbotapi.NewCallback(query.ID, "")
	b.tg.Request(callback)

	switch {
	case strings.HasPrefix(query.Data, CallbackLangPrefix):
		b.handleLanguageSelection(session, query)
	case query.Data == CallbackAnother:
		b.handleAnotherPhoto(session, query)
	}
}

// handleLanguageSelection stores the chosen language and confirms in it.
// Re-selecting is idempotent and simply overwrites the stored preference.
func (b *Bot) handleLanguageSelection(session *UserSession, query *tgbotapi.CallbackQuery) {
	code := strings.TrimPrefix(query.Data, CallbackLangPrefix)
	lang := ParseLanguage(code)

	if err := b.store.SetLanguage(session.userId, string(lang)); err != nil {
		log.Error().Err(err).Int64("userId", session.userId).Str("lang", string(lang)).
			Msg("failed to store language preference")
		session.reply(MsgProcessingError.For(lang))
		return
	}
	log.Info().Int64("userId", session.userId).Str("lang", string(lang)).Msg("language selected")

	if query.Message == nil {
		session.reply(MsgLanguageConfirmed.For(lang))
		return
	}

	// Replace the picker message with the confirmation
	edit := tgbotapi.NewEditMessageText(
		query.Message.Chat.ID,
		query.Message.MessageID,
		MsgLanguageConfirmed.For(lang),
	)
	edit.ParseMode = tgbotapi.ModeMarkdown
	if _, err := b.tg.Send(edit); err != nil {
		log.Error().Err(err).Int64("userId", session.userId).Msg("failed to edit language message")
	}
}

// handleAnotherPhoto handles the "another photo" button under a result.
func (b *Bot) handleAnotherPhoto(session *UserSession, query *tgbotapi.CallbackQuery) {
	lang := ParseLanguage(b.language(session.userId))

	if query.Message == nil {
		session.reply(MsgSendAnother.For(lang))
		return
	}

	edit := tgbotapi.NewEditMessageText(
		query.Message.Chat.ID,
		query.Message.MessageID,
		MsgSendAnother.For(lang),
	)
	if _, err := b.tg.Send(edit); err != nil {
		log.Error().Err(err).Int64("userId", session.userId).Msg("failed to edit result message")
	}
}

// handlePhotoMessage processes photo messages.
// Called from session worker - no locking needed.
func (b *Bot) handlePhotoMessage(ctx context.Context, session *UserSession, message *tgbotapi.Message) {
	code := b.language(session.userId)
	if code == "" {
		// No language picked yet. The analyzer is never invoked in this case.
		session.reply(MsgChooseLanguageFirst)
		return
	}

	// The language is captured once here so a concurrent language switch
	// cannot produce a mixed-language reply.
	lang := ParseLanguage(code)

	// Placeholder while the analysis runs, removed when the result is ready
	placeholder := session.reply(MsgAnalyzing.For(lang))

	// Telegram sends multiple sizes, the last one is the largest
	photo := message.Photo[len(message.Photo)-1]
	imageData, err := b.downloader.DownloadFileID(ctx, b.tg.GetFileDirectURL, photo.FileID)
	if err != nil {
		log.Error().Err(err).Int64("userId", session.userId).Str("fileID", photo.FileID).
			Msg("failed to download photo")
		b.deleteMessage(session.userId, placeholder.MessageID)
		session.reply(MsgProcessingError.For(lang))
		return
	}

	productName := b.analyzer.Analyze(ctx, imageData, string(lang))
	link := b.links.Build(productName, b.region)

	msg := tgbotapi.NewMessage(session.userId, formatReplyText(MsgResultFmt.For(lang), productName, link))
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL(BtnOpenAmazon.For(lang), link),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(BtnAnotherPhoto.For(lang), CallbackAnother),
		),
	)
	session.replyWithMessage(msg)

	b.deleteMessage(session.userId, placeholder.MessageID)
}

// deleteMessage removes a previously sent message, logging failures only.
func (b *Bot) deleteMessage(chatId int64, messageId int) {
	if messageId == 0 {
		return
	}
	if _, err := b.tg.Request(tgbotapi.NewDeleteMessage(chatId, messageId)); err != nil {
		log.Debug().Err(err).Int64("chatId", chatId).Int("messageId", messageId).
			Msg("failed to delete message")
	}
}

// Shutdown stops all session workers gracefully.
func (b *Bot) Shutdown() {
	b.state.Shutdown()
}
