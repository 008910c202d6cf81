package cache

import (
	"bytes"
	"context"
	"os"
	"reflect"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
)

// Remote backends are exercised only when a server is available:
//
//	SNHSDIAG_TEST_REDIS_URL=redis://localhost:6379/15 go test ./pkg/cache
//	SNHSDIAG_TEST_MONGO_URI=mongodb://localhost:27017 go test ./pkg/cache

func exerciseCache(t *testing.T, c Cache) {
	t.Helper()
	ctx := context.Background()

	if _, hit, err := c.Get(ctx, "missing"); err != nil || hit {
		t.Fatalf("Get(missing) = hit %v, err %v", hit, err)
	}
	if err := c.Set(ctx, "k", []byte("payload"), time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, hit, err := c.Get(ctx, "k")
	if err != nil || !hit || !bytes.Equal(got, []byte("payload")) {
		t.Fatalf("Get(k) = %q, hit %v, err %v", got, hit, err)
	}
	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("entry still present after Delete")
	}

	if err := c.Set(ctx, "x", []byte("1"), 0); err != nil {
		t.Fatal(err)
	}
	if err := c.(Clearer).Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "x"); hit {
		t.Error("entry still present after Clear")
	}
}

func TestRedisCache(t *testing.T) {
	url := os.Getenv("SNHSDIAG_TEST_REDIS_URL")
	if url == "" {
		t.Skip("SNHSDIAG_TEST_REDIS_URL not set")
	}
	c, err := NewRedisCache(context.Background(), url, "snhsdiag-test:")
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()
	exerciseCache(t, c)
}

func TestMongoCache(t *testing.T) {
	uri := os.Getenv("SNHSDIAG_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("SNHSDIAG_TEST_MONGO_URI not set")
	}
	ctx := context.Background()
	c, err := NewMongoCache(ctx, uri, "snhsdiag_test", "artifacts", "snhsdiag-test:")
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	other, err := NewMongoCache(ctx, uri, "snhsdiag_test", "artifacts", "other-deployment:")
	if err != nil {
		t.Fatal(err)
	}
	defer other.Close()
	if err := other.Set(ctx, "x", []byte("kept"), time.Minute); err != nil {
		t.Fatal(err)
	}
	defer other.Clear(ctx)

	exerciseCache(t, c)

	if _, hit, err := other.Get(ctx, "x"); err != nil || !hit {
		t.Errorf("Clear removed another prefix's entry: hit %v, err %v", hit, err)
	}
}

func TestPrefixFilter(t *testing.T) {
	tests := []struct {
		prefix string
		want   bson.M
	}{
		{"", bson.M{}},
		{"snhsdiag:", bson.M{"_id": bson.M{"$regex": "^snhsdiag:"}}},
		{"a.b*", bson.M{"_id": bson.M{"$regex": `^a\.b\*`}}},
	}
	for _, tt := range tests {
		if got := prefixFilter(tt.prefix); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("prefixFilter(%q) = %v, want %v", tt.prefix, got, tt.want)
		}
	}
}
