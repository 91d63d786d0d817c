package httpapi

import (
	"errors"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/pontos/nearby-points/internal/places"
	"github.com/pontos/nearby-points/internal/store"
)

var validate = validator.New()

// Options configure the presentation of ranked results.
type Options struct {
	TopN        int
	Logos       *places.LogoCatalog
	MapPlatform places.MapPlatform
}

type handler struct {
	service *places.Service
	opts    Options
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, service *places.Service, opts Options) {
	if opts.TopN <= 0 {
		opts.TopN = 6
	}
	if opts.Logos == nil {
		opts.Logos = places.NewLogoCatalog(places.DefaultLogos, "")
	}
	if opts.MapPlatform == "" {
		opts.MapPlatform = places.MapPlatformAndroid
	}
	h := &handler{service: service, opts: opts}

	v1 := app.Group("/api/v1")

	v1.Get("/cities", h.listCities)
	v1.Get("/locations", h.rankLocations)
	v1.Get("/locations/top", h.topLocations)
	v1.Get("/locations/nearest", h.nearestLocation)

	v1.Post("/sessions", h.createSession)
	v1.Get("/sessions/:id", h.getSession)
	v1.Put("/sessions/:id/position", h.setPosition)
	v1.Put("/sessions/:id/scope", h.setScope)
	v1.Post("/sessions/:id/refresh", h.refresh)
	v1.Get("/sessions/:id/locations", h.sessionLocations)
	v1.Get("/sessions/:id/top", h.sessionTop)
}

type cityItem struct {
	Name  string `json:"name"`
	Label string `json:"label"`
}

func (h *handler) listCities(c *fiber.Ctx) error {
	cities := h.service.Cities()
	items := make([]cityItem, 0, len(cities))
	for _, name := range cities {
		items = append(items, cityItem{Name: name, Label: places.FormatCityName(name)})
	}
	return c.JSON(fiber.Map{"cities": items})
}

func (h *handler) rankLocations(c *fiber.Ctx) error {
	observer, err := parseObserver(c)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	scope := h.service.ResolveScope(c.Query("city"), observer)
	ranked := h.service.Rank(scope, observer, c.Query("q"))
	return c.JSON(fiber.Map{
		"scope": scope,
		"items": h.present(ranked),
	})
}

func (h *handler) topLocations(c *fiber.Ctx) error {
	observer, err := parseObserver(c)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	n, err := h.parseN(c)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	return c.JSON(fiber.Map{"items": h.present(h.service.TopNearest(observer, n))})
}

func (h *handler) nearestLocation(c *fiber.Ctx) error {
	observer, err := parseObserver(c)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if observer == nil {
		return fiber.NewError(fiber.StatusBadRequest, "lat and lon query parameters are required")
	}

	nearest, ok := h.service.Nearest(*observer)
	if !ok {
		return fiber.NewError(fiber.StatusNotFound, "dataset is empty")
	}

	return c.JSON(h.present([]places.Ranked{places.NewRanked(nearest, observer)})[0])
}

func (h *handler) createSession(c *fiber.Ctx) error {
	sess := h.service.CreateSession()
	return c.Status(fiber.StatusCreated).JSON(sess)
}

func (h *handler) getSession(c *fiber.Ctx) error {
	sess, err := h.service.Session(c.Params("id"))
	if err != nil {
		return sessionError(err)
	}
	return c.JSON(sess)
}

func (h *handler) setPosition(c *fiber.Ctx) error {
	var req places.Coordinate
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	sess, err := h.service.SetObserver(c.Params("id"), req)
	if err != nil {
		return sessionError(err)
	}
	return c.JSON(sess)
}

type scopeRequest struct {
	City string `json:"city" validate:"required"`
}

func (h *handler) setScope(c *fiber.Ctx) error {
	var req scopeRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	sess, err := h.service.SetScope(c.Params("id"), req.City)
	if err != nil {
		return sessionError(err)
	}
	return c.JSON(sess)
}

type refreshRequest struct {
	Permission places.Permission `json:"permission" validate:"required,oneof=granted denied"`
	Address    places.Address    `json:"address"`
}

// refresh asks the server side locators for a fix. An unavailable location
// is an expected outcome and is reported as a notice, not an error.
func (h *handler) refresh(c *fiber.Ctx) error {
	var req refreshRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	sess, err := h.service.RefreshObserver(c.UserContext(), c.Params("id"), places.LocateRequest{
		Permission: req.Permission,
		ClientIP:   c.IP(),
		Address:    req.Address,
	})
	switch {
	case err == nil:
		return c.JSON(fiber.Map{"located": true, "session": sess})
	case errors.Is(err, store.ErrNotFound):
		return sessionError(err)
	case errors.Is(err, places.ErrPermissionDenied),
		errors.Is(err, places.ErrNoFix),
		errors.Is(err, places.ErrNoLocators):
		return c.JSON(fiber.Map{"located": false, "notice": err.Error(), "session": sess})
	default:
		return fiber.NewError(fiber.StatusInternalServerError, "failed to refresh location")
	}
}

func (h *handler) sessionLocations(c *fiber.Ctx) error {
	ranked, sess, err := h.service.RankSession(c.Params("id"), c.Query("q"))
	if err != nil {
		return sessionError(err)
	}
	return c.JSON(fiber.Map{
		"scope": sess.Scope,
		"items": h.present(ranked),
	})
}

func (h *handler) sessionTop(c *fiber.Ctx) error {
	n, err := h.parseN(c)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	ranked, err := h.service.TopSession(c.Params("id"), n)
	if err != nil {
		return sessionError(err)
	}
	return c.JSON(fiber.Map{"items": h.present(ranked)})
}

// locationItem is a ranked record as rendered to clients.
type locationItem struct {
	places.Ranked
	Logo   string `json:"logo"`
	MapURL string `json:"mapUrl"`
}

func (h *handler) present(ranked []places.Ranked) []locationItem {
	items := make([]locationItem, 0, len(ranked))
	for _, r := range ranked {
		items = append(items, locationItem{
			Ranked: r,
			Logo:   h.opts.Logos.Resolve(r.Tag),
			MapURL: places.MapLink(h.opts.MapPlatform, r.Latitude, r.Longitude, r.EstablishmentName),
		})
	}
	return items
}

type limitQuery struct {
	N int `validate:"min=1,max=100"`
}

func (h *handler) parseN(c *fiber.Ctx) (int, error) {
	q := limitQuery{N: h.opts.TopN}
	if v := c.Query("n"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, errors.New("n must be an integer")
		}
		q.N = n
	}
	if err := validate.Struct(q); err != nil {
		return 0, err
	}
	return q.N, nil
}

// parseObserver reads the optional lat/lon pair. Both or neither must be set.
func parseObserver(c *fiber.Ctx) (*places.Coordinate, error) {
	latStr, lonStr := c.Query("lat"), c.Query("lon")
	if latStr == "" && lonStr == "" {
		return nil, nil
	}
	if latStr == "" || lonStr == "" {
		return nil, errors.New("lat and lon must be provided together")
	}

	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return nil, errors.New("lat must be a number")
	}
	lon, err := strconv.ParseFloat(lonStr, 64)
	if err != nil {
		return nil, errors.New("lon must be a number")
	}

	observer := places.Coordinate{Latitude: lat, Longitude: lon}
	if err := validate.Struct(observer); err != nil {
		return nil, err
	}
	return &observer, nil
}

func sessionError(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return fiber.NewError(fiber.StatusNotFound, "session not found")
	}
	return fiber.NewError(fiber.StatusInternalServerError, "session lookup failed")
}
