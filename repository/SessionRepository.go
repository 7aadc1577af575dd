package repository

import (
	"context"
	"errors"
	"strconv"
	"time"

	"foodOrder/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const sessionTTL = 30 * time.Minute

type SessionRepository interface {
	CreateSession(userId int, role string) (sessionId string, err error)
	CheckSession(sessionId string) (bool, error)
	DeleteSession(sessionId string) (err error)
	RefreshSession(sessionId string, expirationTime time.Duration) (err error)
	GetUserSessionInfo(sessionId string) (userId int, role string, exists bool, err error)
}

type SessionRepo struct {
	rdb *redis.Client
	ctx context.Context
}

func NewSessionRepository(redisConn *redis.Client, ctx context.Context) (SessionRepository, error) {
	if redisConn == nil {
		return nil, errors.New("conn must be non-nil")
	}
	err := redisConn.Ping(ctx).Err()
	if err != nil {
		return nil, err
	}
	return &SessionRepo{
		rdb: redisConn,
		ctx: ctx,
	}, nil
}

func (s *SessionRepo) CreateSession(userId int, role string) (sessionId string, err error) {
	sessionId = uuid.NewString()
	err = s.rdb.HSet(s.ctx, sessionKey(sessionId), "userId", userId, "role", role).Err()
	if err != nil {
		log.Errorf("CreateSession: %v", err)
		err = models.ErrServerError
		return
	}
	s.rdb.Expire(s.ctx, sessionKey(sessionId), sessionTTL)
	return
}

func (s *SessionRepo) DeleteSession(sessionId string) (err error) {
	err = s.rdb.Del(s.ctx, sessionKey(sessionId)).Err()
	if err != nil {
		log.Errorf("DeleteSession: %v", err)
		err = models.ErrServerError
	}
	return
}

func (s *SessionRepo) GetUserSessionInfo(sessionId string) (userId int, role string, exists bool, err error) {
	exists, err = s.CheckSession(sessionId)
	if err != nil || !exists {
		return
	}

	val, err := s.rdb.HGetAll(s.ctx, sessionKey(sessionId)).Result()
	if err != nil {
		log.Errorf("GetUserSessionInfo: %v", err)
		err = models.ErrServerError
		return
	}
	userId, _ = strconv.Atoi(val["userId"])
	role = val["role"]
	exists = true
	return
}

func (s *SessionRepo) CheckSession(sessionId string) (bool, error) {
	exists, err := s.rdb.Exists(s.ctx, sessionKey(sessionId)).Result()
	if err != nil {
		log.Errorf("CheckSession: %v", err)
		return false, models.ErrServerError
	}
	return exists > 0, nil
}

func (s *SessionRepo) RefreshSession(sessionId string, expirationTime time.Duration) (err error) {
	err = s.rdb.Expire(s.ctx, sessionKey(sessionId), expirationTime).Err()
	if err != nil {
		log.Errorf("RefreshSession: %v", err)
		err = models.ErrServerError
	}
	return
}

func sessionKey(sessionId string) string {
	return "session:" + sessionId
}
