package handler

import (
	"github.com/gofiber/fiber/v2"

	"bizprofile/internal/http/middleware"
	"bizprofile/internal/model"
	"bizprofile/internal/service"
)

type businessTypesResponse struct {
	BusinessTypes []string `json:"business_types"`
}

// @Summary  List own business profiles
// @Tags     business
// @Produce  json
// @Success  200 {array} model.BusinessProfile
// @Failure  401 {object} errorPayload
// @Router   /businesses [get]
func ListBusinesses(svc service.BusinessService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		u := middleware.UserFromCtx(c)
		items, err := svc.List(c.UserContext(), u.ID)
		if err != nil {
			return writeServiceError(c, err)
		}
		if items == nil {
			items = []model.BusinessProfile{}
		}
		return c.JSON(items)
	}
}

// @Summary  Get a business profile
// @Tags     business
// @Produce  json
// @Param    id path string true "Business id"
// @Success  200 {object} model.BusinessProfile
// @Failure  404 {object} errorPayload
// @Router   /business/{id} [get]
func GetBusiness(svc service.BusinessService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		u := middleware.UserFromCtx(c)
		b, err := svc.Get(c.UserContext(), u.ID, c.Params("id"))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(b)
	}
}

// BusinessTypes lists the accepted business types. No authentication.
//
// @Summary  Business types
// @Tags     business
// @Produce  json
// @Success  200 {object} businessTypesResponse
// @Router   /profile/business-types [get]
func BusinessTypes(svc service.BusinessService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(businessTypesResponse{BusinessTypes: svc.BusinessTypes()})
	}
}

// @Summary  Create a business profile
// @Tags     business
// @Accept   json
// @Produce  json
// @Param    body body model.BusinessInput true "Profile"
// @Success  201 {object} model.BusinessProfile
// @Failure  400 {object} errorPayload
// @Router   /business [post]
func CreateBusiness(svc service.BusinessService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in model.BusinessInput
		if err := c.BodyParser(&in); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "request body must be a JSON business profile")
		}

		u := middleware.UserFromCtx(c)
		b, err := svc.Create(c.UserContext(), u.ID, in)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(b)
	}
}

// @Summary  Replace a business profile
// @Tags     business
// @Accept   json
// @Produce  json
// @Param    id   path string             true "Business id"
// @Param    body body model.BusinessInput true "Profile"
// @Success  200 {object} model.BusinessProfile
// @Failure  400 {object} errorPayload
// @Failure  404 {object} errorPayload
// @Router   /business/{id} [put]
func UpdateBusiness(svc service.BusinessService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in model.BusinessInput
		if err := c.BodyParser(&in); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "request body must be a JSON business profile")
		}

		u := middleware.UserFromCtx(c)
		b, err := svc.Update(c.UserContext(), u.ID, c.Params("id"), in)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(b)
	}
}

// @Summary  Delete a business profile with its logo and documents
// @Tags     business
// @Produce  json
// @Param    id path string true "Business id"
// @Success  200 {object} messageResponse
// @Failure  404 {object} errorPayload
// @Router   /business/{id} [delete]
func DeleteBusiness(svc service.BusinessService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		u := middleware.UserFromCtx(c)
		if err := svc.Delete(c.UserContext(), u.ID, c.Params("id")); err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(messageResponse{Message: "Business deleted successfully"})
	}
}
