package main

import (
	"net/http"
	"strconv"

	"bitbucket.org/andeansoft/carniceria_backend/models"
	"github.com/gin-gonic/gin"
)

func openCashSessionHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireUser(c) {
			return
		}
		var input models.NewCashSession
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		session, err := models.OpenCashSession(c.Request.Context(), &input)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": session})
	}
}

func getOpenCashSessionHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireUser(c) {
			return
		}
		terminalId, err := strconv.Atoi(c.Query("terminal_id"))
		if err != nil || terminalId <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "terminal_id is required"})
			return
		}
		session, err := models.GetOpenCashSession(c.Request.Context(), terminalId)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}

		// running expectation so the close screen can pre-fill
		expected := models.ExpectedCashAmount(session.OpeningAmount, session.Movements)
		c.JSON(http.StatusOK, gin.H{"data": session, "expected_amount": expected})
	}
}

func closeCashSessionHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireUser(c) {
			return
		}
		var input models.CloseCashSessionInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		session, err := models.CloseCashSession(c.Request.Context(), &input)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": session})
	}
}

func recordCashMovementHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireUser(c) {
			return
		}
		var input models.NewCashMovement
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		movement, err := models.RecordCashMovement(c.Request.Context(), &input)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": movement})
	}
}
