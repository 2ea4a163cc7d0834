package repository

import "testing"

// Compile-time interface compliance, exercised once so a broken
// assertion shows up as a test failure rather than a build error alone.
func TestPostgresRepos_ImplementInterfaces(t *testing.T) {
	var _ UserRepository = (*PostgresUserRepo)(nil)
	var _ ResetTokenRepository = (*PostgresResetTokenRepo)(nil)
	var _ GameRepository = (*PostgresGameRepo)(nil)
	var _ LibraryRepository = (*PostgresLibraryRepo)(nil)
	var _ CartRepository = (*PostgresCartRepo)(nil)
	var _ WishlistRepository = (*PostgresWishlistRepo)(nil)
	var _ OrderRepository = (*PostgresOrderRepo)(nil)
	var _ FriendshipRepository = (*PostgresFriendshipRepo)(nil)
	var _ PostRepository = (*PostgresPostRepo)(nil)
}

func TestNewPostgresUserRepo_Initializes(t *testing.T) {
	if repo := NewPostgresUserRepo(nil); repo == nil {
		t.Fatal("expected non-nil repo")
	}
}
