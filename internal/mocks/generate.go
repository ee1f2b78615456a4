// Package mocks provides gomock implementations of the ports used by the session and catalog services.
//
// To regenerate after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	store := mocks.NewMockSessionStore(ctrl)
//	store.EXPECT().Get(gomock.Any(), "kj-connect-user").Return(nil, ports.ErrNotFound)
package mocks

// SessionStore, Notifier, CredentialValidator and CatalogRepository from internal/ports.
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=ports_mock.go github.com/kjsce/kj-connect/internal/ports SessionStore,Notifier,CredentialValidator,CatalogRepository
