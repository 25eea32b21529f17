package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/deskflow/helpdesk-api/internal/api/dto"
	"github.com/deskflow/helpdesk-api/internal/auth"
	"github.com/deskflow/helpdesk-api/internal/service"
	"github.com/deskflow/helpdesk-api/internal/validation"
)

// BooksHandler exposes the book catalog.
type BooksHandler struct {
	service *service.BookService
}

// NewBooksHandler constructs handler.
func NewBooksHandler(bookService *service.BookService) *BooksHandler {
	return &BooksHandler{service: bookService}
}

// ListBooks GET /books.
func (h *BooksHandler) ListBooks(c *fiber.Ctx) error {
	books, err := h.service.List(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewBookList(books)})
}

// GetBook GET /books/:id.
func (h *BooksHandler) GetBook(c *fiber.Ctx) error {
	book, err := h.service.Get(c.UserContext(), bookIDParam(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewBookResponse(book)})
}

// CreateBook POST /books.
func (h *BooksHandler) CreateBook(c *fiber.Ctx) error {
	var req validation.BookParams
	if err := parseBody(c, &req); err != nil {
		return err
	}
	book, err := h.service.Create(c.UserContext(), auth.ActorFromContext(c), req)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewBookResponse(book)})
}

// UpdateBook PATCH /books/:id.
func (h *BooksHandler) UpdateBook(c *fiber.Ctx) error {
	var req validation.BookParams
	if err := parseBody(c, &req); err != nil {
		return err
	}
	book, err := h.service.Update(c.UserContext(), auth.ActorFromContext(c), bookIDParam(c), req)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewBookResponse(book)})
}

// DeleteBook DELETE /books/:id.
func (h *BooksHandler) DeleteBook(c *fiber.Ctx) error {
	book, err := h.service.Delete(c.UserContext(), auth.ActorFromContext(c), bookIDParam(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewBookResponse(book)})
}

// DeleteBooks POST /books/delete.
func (h *BooksHandler) DeleteBooks(c *fiber.Ctx) error {
	var req validation.DeleteBooksParams
	if err := parseBody(c, &req); err != nil {
		return err
	}
	books, err := h.service.DeleteMany(c.UserContext(), auth.ActorFromContext(c), req)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewBookList(books)})
}
