package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/classtime/classtime-api/internal/models"
)

func TestCreateClassroomInsertsCreatorAdmin(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewClassroomRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO classrooms").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO classroom_members").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	classroom := &models.Classroom{Name: "Calculus", Subject: "Math", Description: "Intro course", CreatorID: "u1"}
	err := repo.Create(context.Background(), classroom)
	require.NoError(t, err)
	assert.NotEmpty(t, classroom.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindMember(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewMemberRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "classroom_id", "user_id", "role", "created_at"}).
		AddRow("m1", "c1", "u1", string(models.MemberRoleAdmin), now)
	mock.ExpectQuery("SELECT .+ FROM classroom_members").
		WithArgs("c1", "u1").
		WillReturnRows(rows)

	member, err := repo.FindMember(context.Background(), "c1", "u1")
	require.NoError(t, err)
	assert.Equal(t, models.MemberRoleAdmin, member.Role)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListByClassroom(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewMemberRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "classroom_id", "user_id", "role", "created_at", "email", "username", "first_name", "last_name"}).
		AddRow("m1", "c1", "u1", string(models.MemberRoleAdmin), now, "a@example.com", "alice", "Alice", "Doe").
		AddRow("m2", "c1", "u2", string(models.MemberRoleMember), now, "b@example.com", "bob", "Bob", "Doe")
	mock.ExpectQuery("SELECT .+ FROM classroom_members m").WithArgs("c1").WillReturnRows(rows)

	members, err := repo.ListByClassroom(context.Background(), "c1")
	require.NoError(t, err)
	assert.Len(t, members, 2)
	assert.Equal(t, "alice", members[0].Username)
	assert.NoError(t, mock.ExpectationsWereMet())
}
