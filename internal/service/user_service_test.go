package service

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"image"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"password-dashboard/internal/mailer"
)

func TestUserService_Register(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	sender := &MockSender{}
	sender.On("Send", mock.Anything, mock.MatchedBy(func(msg mailer.Message) bool {
		return msg.To == "alice@example.com" && strings.Contains(msg.Body, "Alice")
	})).Return(nil).Once()

	users := NewUserService(store, sender, nil, quietLogger())
	user, err := users.Register(ctx, RegisterInput{Name: " Alice ", Email: "Alice@Example.com", Password: "abc12!"})
	require.NoError(t, err)

	assert.NotZero(t, user.ID)
	assert.Equal(t, "Alice", user.Name)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.Empty(t, user.PasswordHash)

	stored, err := store.Users().GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.NotEqual(t, "abc12!", stored.PasswordHash)
	sender.AssertExpectations(t)
}

func TestUserService_RegisterValidation(t *testing.T) {
	users := NewUserService(newTestStore(t), nil, nil, quietLogger())

	_, err := users.Register(context.Background(), RegisterInput{Name: "", Email: "not-an-email", Password: "abc"})
	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, []string{msgRequired}, ve.Fields["name"])
	assert.Equal(t, []string{msgInvalidEmail}, ve.Fields["email"])
	assert.Contains(t, ve.Fields["password"], "Password must be between 6 and 20 characters.")
	assert.Contains(t, ve.Fields["password"], "Password must contain at least one number.")
}

func TestUserService_RegisterAcceptsAnyNonEmptyName(t *testing.T) {
	users := NewUserService(newTestStore(t), newQuietSender(), nil, quietLogger())

	short, err := users.Register(context.Background(), RegisterInput{Name: "J", Email: "j@example.com", Password: "abc12!"})
	require.NoError(t, err)
	assert.Equal(t, "J", short.Name)

	longName := strings.Repeat("n", 25)
	long, err := users.Register(context.Background(), RegisterInput{Name: longName, Email: "n@example.com", Password: "abc12!"})
	require.NoError(t, err)
	assert.Equal(t, longName, long.Name)
}

func TestUserService_RegisterRejectsEveryRuleViolation(t *testing.T) {
	users := NewUserService(newTestStore(t), nil, nil, quietLogger())

	_, err := users.Register(context.Background(), RegisterInput{Name: "Bob", Email: "bob@example.com", Password: "abc_12!"})
	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, []string{"Password cannot contain '_', '/', or ','."}, ve.Fields["password"])
}

func TestUserService_RegisterDuplicateEmail(t *testing.T) {
	users := NewUserService(newTestStore(t), newQuietSender(), nil, quietLogger())
	registerUser(t, users, "Alice", "alice@example.com", "abc12!")

	_, err := users.Register(context.Background(), RegisterInput{Name: "Other", Email: "ALICE@example.com", Password: "xyz34?"})
	assert.ErrorIs(t, err, ErrDuplicateEmail)
}

func TestUserService_RegisterSurvivesMailFailure(t *testing.T) {
	sender := &MockSender{}
	sender.On("Send", mock.Anything, mock.Anything).Return(mailer.ErrQueueFull)

	users := NewUserService(newTestStore(t), sender, nil, quietLogger())
	user, err := users.Register(context.Background(), RegisterInput{Name: "Alice", Email: "alice@example.com", Password: "abc12!"})
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
}

func TestUserService_Authenticate(t *testing.T) {
	ctx := context.Background()
	users := NewUserService(newTestStore(t), newQuietSender(), nil, quietLogger())
	registered := registerUser(t, users, "Alice", "alice@example.com", "abc12!")

	user, err := users.Authenticate(ctx, " Alice@example.com", "abc12!")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)
	assert.Empty(t, user.PasswordHash)

	_, err = users.Authenticate(ctx, "alice@example.com", "wrong1!")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = users.Authenticate(ctx, "nobody@example.com", "abc12!")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = users.Authenticate(ctx, "", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestUserService_GetByIDMissing(t *testing.T) {
	users := NewUserService(newTestStore(t), nil, nil, quietLogger())
	_, err := users.GetByID(context.Background(), 42)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUserService_UpdateAccount(t *testing.T) {
	ctx := context.Background()
	users := NewUserService(newTestStore(t), newQuietSender(), nil, quietLogger())
	alice := registerUser(t, users, "Alice", "alice@example.com", "abc12!")
	registerUser(t, users, "Bob", "bob@example.com", "abc12!")

	// unchanged email is not a duplicate
	updated, err := users.UpdateAccount(ctx, alice.ID, AccountInput{Name: "Alice B", Email: "alice@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "Alice B", updated.Name)

	_, err = users.UpdateAccount(ctx, alice.ID, AccountInput{Name: "Alice", Email: "bob@example.com"})
	assert.ErrorIs(t, err, ErrDuplicateEmail)

	updated, err = users.UpdateAccount(ctx, alice.ID, AccountInput{Name: "Alice", Email: "New@Example.com"})
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", updated.Email)

	_, err = users.UpdateAccount(ctx, alice.ID, AccountInput{Name: "A", Email: "new@example.com"})
	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, []string{"Field must be between 2 and 20 characters long."}, ve.Fields["name"])

	_, err = users.UpdateAccount(ctx, 999, AccountInput{Name: "Ghost", Email: "ghost@example.com"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))))
	return buf.Bytes()
}

func TestUserService_UpdateAccountPicture(t *testing.T) {
	ctx := context.Background()
	pictures := &MockStorage{}
	users := NewUserService(newTestStore(t), newQuietSender(), pictures, quietLogger())
	alice := registerUser(t, users, "Alice", "alice@example.com", "abc12!")

	var firstKey string
	pictures.On("Put", mock.Anything, mock.Anything, mock.Anything, "image/png").
		Run(func(args mock.Arguments) { firstKey = args.String(1) }).
		Return(nil).Once()

	updated, err := users.UpdateAccount(ctx, alice.ID, AccountInput{
		Name:    "Alice",
		Email:   "alice@example.com",
		Picture: bytes.NewReader(pngBytes(t, 300, 300)),
	})
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(firstKey, ".png"))
	assert.Equal(t, firstKey, updated.ImageFile)

	// a second upload replaces the first, which is then removed
	pictures.On("Put", mock.Anything, mock.Anything, mock.Anything, "image/png").Return(nil).Once()
	pictures.On("Delete", mock.Anything, firstKey).Return(errors.New("gone")).Once()

	updated, err = users.UpdateAccount(ctx, alice.ID, AccountInput{
		Name:    "Alice",
		Email:   "alice@example.com",
		Picture: bytes.NewReader(pngBytes(t, 10, 10)),
	})
	require.NoError(t, err)
	assert.NotEqual(t, firstKey, updated.ImageFile)

	pictures.On("URL", mock.Anything, updated.ImageFile).Return("/static/profile_pics/"+updated.ImageFile, nil)
	assert.Equal(t, "/static/profile_pics/"+updated.ImageFile, users.PictureURL(ctx, updated))
	assert.Empty(t, users.PictureURL(ctx, alice))

	pictures.AssertExpectations(t)
}

func TestUserService_UpdateAccountRejectsNonImage(t *testing.T) {
	pictures := &MockStorage{}
	users := NewUserService(newTestStore(t), newQuietSender(), pictures, quietLogger())
	alice := registerUser(t, users, "Alice", "alice@example.com", "abc12!")

	_, err := users.UpdateAccount(context.Background(), alice.ID, AccountInput{
		Name:    "Alice",
		Email:   "alice@example.com",
		Picture: strings.NewReader("definitely not an image"),
	})
	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.NotEmpty(t, ve.Fields["picture"])
	pictures.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestUserService_UpdateAccountRejectsHugePicture(t *testing.T) {
	pictures := &MockStorage{}
	users := NewUserService(newTestStore(t), newQuietSender(), pictures, quietLogger())
	alice := registerUser(t, users, "Alice", "alice@example.com", "abc12!")

	// A gray PNG header declaring 16000x16000 pixels, with no image data.
	ihdr := append([]byte("IHDR"), make([]byte, 13)...)
	binary.BigEndian.PutUint32(ihdr[4:], 16000)
	binary.BigEndian.PutUint32(ihdr[8:], 16000)
	ihdr[12] = 8
	var buf bytes.Buffer
	buf.WriteString("\x89PNG\r\n\x1a\n")
	_ = binary.Write(&buf, binary.BigEndian, uint32(13))
	buf.Write(ihdr)
	_ = binary.Write(&buf, binary.BigEndian, crc32.ChecksumIEEE(ihdr))

	_, err := users.UpdateAccount(context.Background(), alice.ID, AccountInput{
		Name:    "Alice",
		Email:   "alice@example.com",
		Picture: &buf,
	})
	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, []string{msgPictureTooLarge}, ve.Fields["picture"])
	pictures.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
