package middlewares

import (
	"encoding/base64"
	"os"
	"strings"

	"github.com/dgrijalva/jwt-go"
	"github.com/gofiber/fiber/v2"
)

// Auth represents parsed jwt information of the acting user.
type Auth struct {
	UID      string   `json:"uid"`
	Email    string   `json:"email"`
	Role     string   `json:"role"`
	Audience []string `json:"aud,omitempty"`

	jwt.StandardClaims
}

// CurrentActor returns the uid parsed from the bearer token, or empty when
// the request carried no valid token.
func CurrentActor(c *fiber.Ctx) string {
	actor, _ := c.Locals("actor_uid").(string)

	return actor
}

func AuthMiddleware(c *fiber.Ctx) error {
	var auth Auth

	token := c.Get("Authorization")
	token = strings.Replace(token, "Bearer ", "", -1)

	public_key_pem, err := base64.StdEncoding.DecodeString(os.Getenv("JWT_PUBLIC_KEY"))
	if err != nil {
		return c.Status(401).JSON(fiber.Map{
			"errors": []string{"jwt.decode_and_verify"},
		})
	}

	public_key, err := jwt.ParseRSAPublicKeyFromPEM(public_key_pem)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{
			"errors": []string{"jwt.decode_and_verify"},
		})
	}

	_, err = jwt.ParseWithClaims(token, &auth, func(t *jwt.Token) (interface{}, error) {
		return public_key, nil
	})
	if err != nil {
		return c.Status(401).JSON(fiber.Map{
			"errors": []string{"jwt.decode_and_verify"},
		})
	}

	c.Locals("actor_uid", auth.UID)

	return c.Next()
}
