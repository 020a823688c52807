package server

import (
	"amizades/internal/models"

	"github.com/gofiber/fiber/v2"
)

// SearchUsers handles GET /api/search-users?query=
func (s *Server) SearchUsers(c *fiber.Ctx) error {
	results, err := s.relationships.Search(c.UserContext(), c.Query("query"), getUserID(c))
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(results)
}

// SendFriendRequest handles POST /api/send-friend-request
func (s *Server) SendFriendRequest(c *fiber.Ctx) error {
	var body receiverBody
	if ok, err := parseBody(c, &body); !ok {
		return err
	}
	receiverID, ok, err := requireID(c, body.ReceiverID, "receiverId")
	if !ok {
		return err
	}

	if _, err := s.relationships.SendRequest(c.UserContext(), getUserID(c), receiverID); err != nil {
		return models.RespondWithAppError(c, err)
	}
	return respondSuccess(c, "Friend request sent")
}

// AcceptFriendRequest handles POST /api/accept-friend-request
func (s *Server) AcceptFriendRequest(c *fiber.Ctx) error {
	var body senderBody
	if ok, err := parseBody(c, &body); !ok {
		return err
	}
	senderID, ok, err := requireID(c, body.SenderID, "senderId")
	if !ok {
		return err
	}

	if err := s.relationships.AcceptRequest(c.UserContext(), senderID, getUserID(c)); err != nil {
		return models.RespondWithAppError(c, err)
	}
	return respondSuccess(c, "Friendship confirmed")
}

// RejectRequest handles DELETE /api/reject-request
func (s *Server) RejectRequest(c *fiber.Ctx) error {
	var body senderBody
	if ok, err := parseBody(c, &body); !ok {
		return err
	}
	senderID, ok, err := requireID(c, body.SenderID, "senderId")
	if !ok {
		return err
	}

	if err := s.relationships.RejectRequest(c.UserContext(), senderID, getUserID(c)); err != nil {
		return models.RespondWithAppError(c, err)
	}
	return respondSuccess(c, "Friend request rejected")
}

// CheckRequests handles GET /api/check-requests
func (s *Server) CheckRequests(c *fiber.Ctx) error {
	count, err := s.relationships.CountPending(c.UserContext(), getUserID(c))
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"count": count})
}

// GetRequests handles GET /api/get-requests
func (s *Server) GetRequests(c *fiber.Ctx) error {
	profiles, err := s.relationships.ListPending(c.UserContext(), getUserID(c))
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(profiles)
}

// GetFriends handles GET /api/friends
func (s *Server) GetFriends(c *fiber.Ctx) error {
	profiles, err := s.relationships.ListFriends(c.UserContext(), getUserID(c))
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(profiles)
}

// GetFriendStatus handles GET /api/friend-status/:userId
func (s *Server) GetFriendStatus(c *fiber.Ctx) error {
	status, err := s.relationships.GetStatus(c.UserContext(), getUserID(c), c.Params("userId"))
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"status": status})
}
