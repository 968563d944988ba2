package tagindex

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// DefaultKey : une seule clé partagée portant le set de tous les tags observés.
const DefaultKey = "tags:index"

// RedisTagIndex implémente ports.TagIndex sur un SET Redis.
// SADD est l'union atomique côté serveur : deux Merge concurrents ne peuvent
// pas se perdre mutuellement, contrairement au pattern GET/concat/SET
// qui écrase les ajouts de l'autre écrivain.
type RedisTagIndex struct {
	client *redis.Client
	key    string
}

func NewRedisTagIndex(client *redis.Client) *RedisTagIndex {
	return &RedisTagIndex{client: client, key: DefaultKey}
}

// Merge ajoute tous les tags en UN SEUL appel SADD multi-membres.
func (r *RedisTagIndex) Merge(ctx context.Context, tags []string) error {
	if len(tags) == 0 {
		return nil
	}

	members := make([]interface{}, len(tags))
	for i, t := range tags {
		members[i] = t
	}
	return r.client.SAdd(ctx, r.key, members...).Err()
}

// All retourne le set courant. Une clé absente donne un set vide
// (comportement natif de SMEMBERS), jamais une erreur.
func (r *RedisTagIndex) All(ctx context.Context) ([]string, error) {
	tags, err := r.client.SMembers(ctx, r.key).Result()
	if err != nil {
		return nil, err
	}
	if tags == nil {
		tags = []string{}
	}
	return tags, nil
}
