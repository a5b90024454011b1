package events

import "context"

// NopPublisher заглушка на случай отключённой шины событий в конфигурации
type NopPublisher struct{}

// Publish ничего не делает
func (NopPublisher) Publish(_ context.Context, _ string, _ int64, _ any) error { return nil }

// Close ничего не делает
func (NopPublisher) Close() error { return nil }
