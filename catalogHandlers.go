package main

import (
	"net/http"
	"strconv"
	"strings"

	"bitbucket.org/andeansoft/carniceria_backend/config"
	"bitbucket.org/andeansoft/carniceria_backend/models"
	"github.com/gin-gonic/gin"
)

func listProductCategoriesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireUser(c) {
			return
		}
		categories, err := models.ListProductCategories(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": categories})
	}
}

func createProductCategoryHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireAdmin(c) {
			return
		}
		var input models.NewProductCategory
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		category, err := models.CreateProductCategory(c.Request.Context(), &input)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": category})
	}
}

func updateProductCategoryHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireAdmin(c) {
			return
		}
		id, err := idParam(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		var input models.NewProductCategory
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		category, err := models.UpdateProductCategory(c.Request.Context(), id, &input)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": category})
	}
}

func deleteProductCategoryHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireAdmin(c) {
			return
		}
		id, err := idParam(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		category, err := models.DeleteProductCategory(c.Request.Context(), id)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": category})
	}
}

func listProductsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireUser(c) {
			return
		}
		categoryId, _ := strconv.Atoi(c.Query("category_id"))
		limit, _ := strconv.Atoi(c.Query("limit"))
		offset, _ := strconv.Atoi(c.Query("offset"))
		activeOnly := !strings.EqualFold(c.Query("include_inactive"), "true")

		products, err := models.ListProducts(c.Request.Context(), c.Query("name"), categoryId, activeOnly, limit, offset)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": products})
	}
}

func createProductHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireAdmin(c) {
			return
		}
		var input models.NewProduct
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		product, err := models.CreateProduct(c.Request.Context(), &input)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": product})
	}
}

func getProductHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireUser(c) {
			return
		}
		id, err := idParam(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		product, err := models.GetProduct(c.Request.Context(), id)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": product})
	}
}

func updateProductHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireAdmin(c) {
			return
		}
		id, err := idParam(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		var input models.NewProduct
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		product, err := models.UpdateProduct(c.Request.Context(), id, &input)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": product})
	}
}

func deleteProductHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireAdmin(c) {
			return
		}
		id, err := idParam(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		product, err := models.DeleteProduct(c.Request.Context(), id)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": product})
	}
}

func toggleProductActiveHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireAdmin(c) {
			return
		}
		id, err := idParam(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		var input struct {
			IsActive bool `json:"is_active"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		product, err := models.ToggleActiveProduct(c.Request.Context(), id, input.IsActive)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": product})
	}
}

func listProductBatchesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireUser(c) {
			return
		}
		id, err := idParam(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		includeSold := strings.EqualFold(c.Query("include_sold"), "true")
		batches, err := models.ListProductBatches(c.Request.Context(), id, includeSold)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": batches})
	}
}

// listAvailableBatchesHandler feeds the lot picker: unsold, unreserved lots
// of one product, minus those already sitting in the current cart.
func listAvailableBatchesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireUser(c) {
			return
		}
		productId, err := strconv.Atoi(c.Query("product_id"))
		if err != nil || productId <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "product_id is required"})
			return
		}
		forOrderId, _ := strconv.Atoi(c.Query("for_order_id"))

		var excludeIds []int
		for _, raw := range c.QueryArray("exclude_id") {
			if id, err := strconv.Atoi(raw); err == nil && id > 0 {
				excludeIds = append(excludeIds, id)
			}
		}

		batches, err := models.ListAvailableBatches(c.Request.Context(), productId, forOrderId, excludeIds)
		if err != nil {
			// The picker degrades to an empty list; the cashier can retry.
			config.LogError(config.GetLogger(), "catalogHandlers.go", "listAvailableBatchesHandler", "ListAvailableBatches", productId, err)
			c.JSON(http.StatusOK, gin.H{"data": []*models.ProductBatch{}})
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": batches})
	}
}

func createProductBatchHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireUser(c) {
			return
		}
		var input models.NewProductBatch
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		batch, err := models.CreateProductBatch(c.Request.Context(), &input)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": batch})
	}
}

func updateProductBatchHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireUser(c) {
			return
		}
		id, err := idParam(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		var input models.NewProductBatch
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		batch, err := models.UpdateProductBatch(c.Request.Context(), id, &input)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": batch})
	}
}

func deleteProductBatchHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireUser(c) {
			return
		}
		id, err := idParam(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		batch, err := models.DeleteProductBatch(c.Request.Context(), id)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": batch})
	}
}
