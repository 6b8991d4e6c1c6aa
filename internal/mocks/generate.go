// Package mocks provides gomock implementations of the gateway ports.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	store := mocks.NewMockStatusStore(ctrl)
//	store.EXPECT().Put(gomock.Any(), gomock.Any()).Return(nil)
package mocks

//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=status_store_mock.go github.com/StefanUPB/tng-gtk-common/internal/core StatusStore

//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=cache_repository_mock.go github.com/StefanUPB/tng-gtk-common/internal/core CacheRepository

//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=unpackager_mock.go github.com/StefanUPB/tng-gtk-common/internal/core Unpackager

//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=catalogue_mock.go github.com/StefanUPB/tng-gtk-common/internal/core Catalogue
