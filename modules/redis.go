package modules

import (
	"context"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/kristofer/hookvm/internal/value"
)

// redisModule mirrors original_source/extensions/redis.c's connect/
// command pair over github.com/redis/go-redis/v9 instead of hiredis:
// connect opens a client wrapped as userdata, command runs one
// space-separated command line through Client.Do and converts the
// reply back with the same type-switch shape as the original's
// redis_reply_to_value.
func redisModule() value.Value {
	return namespace([]entry{
		fn("connect", 2, func(h value.Host, args []value.Value) (value.Value, value.Status, error) {
			host, err := stringArg("redis.connect", args, 0)
			if err != nil {
				return value.Nil, value.StatusError, err
			}
			port, err := intArg("redis.connect", args, 1)
			if err != nil {
				return value.Nil, value.StatusError, err
			}
			client := redis.NewClient(&redis.Options{Addr: host + ":" + strconv.FormatInt(port, 10)})
			if err := client.Ping(context.Background()).Err(); err != nil {
				client.Close()
				return value.Nil, value.StatusOK, nil
			}
			return value.FromUserdata(value.NewUserdata("redis.client", client, func(p any) {
				p.(*redis.Client).Close()
			})), value.StatusOK, nil
		}),
		fn("command", 2, func(h value.Host, args []value.Value) (value.Value, value.Status, error) {
			client, err := redisClientArg(args, 0)
			if err != nil {
				return value.Nil, value.StatusError, err
			}
			command, err := stringArg("redis.command", args, 1)
			if err != nil {
				return value.Nil, value.StatusError, err
			}
			fields := strings.Fields(command)
			cmdArgs := make([]any, len(fields))
			for i, f := range fields {
				cmdArgs[i] = f
			}
			reply, cerr := client.Do(context.Background(), cmdArgs...).Result()
			if cerr != nil {
				if cerr == redis.Nil {
					return value.Nil, value.StatusOK, nil
				}
				return str(cerr.Error()), value.StatusOK, nil
			}
			return redisReplyToValue(reply), value.StatusOK, nil
		}),
	})
}

// redisReplyToValue is the Go-side redis_reply_to_value: go-redis's
// generic Do().Result() already unwraps the RESP reply into plain Go
// types, so this only needs to cover the shapes that actually surface
// (string, int64, float64, bool, []any, nil) rather than the original's
// low-level hiredis reply-type enum.
func redisReplyToValue(reply any) value.Value {
	switch r := reply.(type) {
	case nil:
		return value.Nil
	case string:
		return str(r)
	case int64:
		return value.Number(float64(r))
	case float64:
		return value.Number(r)
	case bool:
		return value.Bool(r)
	case []any:
		elems := make([]value.Value, len(r))
		for i, e := range r {
			elems[i] = redisReplyToValue(e)
		}
		return value.FromArray(value.NewArray(elems))
	default:
		return str("unsupported reply type")
	}
}

func redisClientArg(args []value.Value, i int) (*redis.Client, error) {
	if i >= len(args) {
		return nil, arityError("redis", i+1, len(args))
	}
	if args[i].Type() != value.TypeUserdata || args[i].AsUserdata().Tag() != "redis.client" {
		return nil, argError("redis", i, "a redis client handle", args[i])
	}
	return args[i].AsUserdata().Ptr().(*redis.Client), nil
}
