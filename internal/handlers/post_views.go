package handlers

import (
	"github.com/linkuphq/backend/internal/models"
	"github.com/linkuphq/backend/internal/repositories"
)

// buildPostViews decorates posts with author profiles, like and
// comment counts, and whether the viewer liked each one. One batched
// query per concern, regardless of page size.
func buildPostViews(posts []models.Post, viewerID uint, userRepo repositories.UserRepository, likeRepo repositories.LikeRepository, commentRepo repositories.CommentRepository) ([]models.PostView, error) {
	postIDs := make([]uint, 0, len(posts))
	authorIDs := make([]uint, 0, len(posts))
	seenAuthors := make(map[uint]bool, len(posts))
	for _, p := range posts {
		postIDs = append(postIDs, p.ID)
		if !seenAuthors[p.AuthorID] {
			seenAuthors[p.AuthorID] = true
			authorIDs = append(authorIDs, p.AuthorID)
		}
	}

	authors, err := userRepo.GetUsersByIDs(authorIDs)
	if err != nil {
		return nil, err
	}
	likeCounts, err := likeRepo.CountByPostIDs(postIDs)
	if err != nil {
		return nil, err
	}
	commentCounts, err := commentRepo.CountByPostIDs(postIDs)
	if err != nil {
		return nil, err
	}
	liked, err := likeRepo.LikedPostIDs(viewerID, postIDs)
	if err != nil {
		return nil, err
	}

	views := make([]models.PostView, 0, len(posts))
	for _, p := range posts {
		author := authors[p.AuthorID]
		views = append(views, models.PostView{
			Post:          p,
			Author:        author.ToPublic(),
			LikesCount:    likeCounts[p.ID],
			CommentsCount: commentCounts[p.ID],
			LikedByViewer: liked[p.ID],
		})
	}
	return views, nil
}
