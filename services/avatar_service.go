package services

import (
	"context"
	"path"

	"github.com/gabriel-vasile/mimetype"
	"github.com/ye11ow-banana/main-be/models"
	"github.com/ye11ow-banana/main-be/repositories"
)

type objectStorage interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
}

var avatarTypes = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/webp": ".webp",
}

type AvatarService struct {
	storage objectStorage
	users   repositories.UserStore
}

func NewAvatarService(storage objectStorage, users repositories.UserStore) *AvatarService {
	return &AvatarService{storage: storage, users: users}
}

// Upload stores data as the user's avatar under "<user_id><ext>"; the type
// is sniffed from the bytes, never trusted from the client.
func (s *AvatarService) Upload(ctx context.Context, user *models.User, data []byte) (*UserView, error) {
	mtype := mimetype.Detect(data)
	var contentType, ext string
	for ct, e := range avatarTypes {
		if mtype.Is(ct) {
			contentType, ext = ct, e
		}
	}
	if contentType == "" {
		return nil, ErrUnsupportedImageType
	}

	key := user.ID.String() + ext
	if user.AvatarURL != nil {
		if old := path.Base(*user.AvatarURL); old != key {
			if err := s.storage.Delete(ctx, old); err != nil {
				return nil, err
			}
		}
	}
	url, err := s.storage.Upload(ctx, key, data, contentType)
	if err != nil {
		return nil, err
	}
	if err := s.users.SetAvatarURL(ctx, user.ID, &url); err != nil {
		return nil, err
	}
	user.AvatarURL = &url
	v := NewUserView(*user)
	return &v, nil
}

func (s *AvatarService) Delete(ctx context.Context, user *models.User) (*UserView, error) {
	if user.AvatarURL != nil {
		if err := s.storage.Delete(ctx, path.Base(*user.AvatarURL)); err != nil {
			return nil, err
		}
		if err := s.users.SetAvatarURL(ctx, user.ID, nil); err != nil {
			return nil, err
		}
		user.AvatarURL = nil
	}
	v := NewUserView(*user)
	return &v, nil
}
