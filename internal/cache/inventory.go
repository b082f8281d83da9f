package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	UserKeyPrefix      = "user:%d"
	PostKeyPrefix      = "post:%d"
	DeniedTokenPrefix  = "denied:%s"
	FollowingKeyPrefix = "user:%d:following"
)

const (
	// UserTTL is deliberately short: the profile endpoint serves from this
	// cache and every profile-mutating call invalidates it, replacing the
	// fetch-fresh-on-every-call pattern with a bounded-staleness one.
	UserTTL      = 5 * time.Minute
	PostTTL      = 30 * time.Minute
	FollowingTTL = 2 * time.Minute
)

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

func PostKey(postID uint) string {
	return fmt.Sprintf(PostKeyPrefix, postID)
}

func FollowingKey(userID uint) string {
	return fmt.Sprintf(FollowingKeyPrefix, userID)
}

func deniedTokenKey(jti string) string {
	return fmt.Sprintf(DeniedTokenPrefix, jti)
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidateUser(ctx context.Context, userID uint) {
	Invalidate(ctx, UserKey(userID))
}

func InvalidatePost(ctx context.Context, postID uint) {
	Invalidate(ctx, PostKey(postID))
}

func InvalidateFollowing(ctx context.Context, userID uint) {
	Invalidate(ctx, FollowingKey(userID))
}

// DenyToken revokes a JWT by its JTI until the token would have expired
// anyway. Used by logout.
func DenyToken(ctx context.Context, jti string, until time.Time) error {
	if client == nil || jti == "" {
		return nil
	}
	ttl := time.Until(until)
	if ttl <= 0 {
		return nil
	}
	return client.Set(ctx, deniedTokenKey(jti), "1", ttl).Err()
}

// IsTokenDenied reports whether a JTI has been revoked. Fails open when the
// cache is unavailable: an unreachable Redis must not lock every user out.
func IsTokenDenied(ctx context.Context, jti string) bool {
	if client == nil || jti == "" {
		return false
	}
	n, err := client.Exists(ctx, deniedTokenKey(jti)).Result()
	if err != nil {
		return false
	}
	return n > 0
}
