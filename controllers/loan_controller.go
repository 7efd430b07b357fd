// controllers/loan_controller.go
package controllers

import (
	"net/http"
	"time"

	"ong_equipment_tool/app"
	"ong_equipment_tool/db"

	"github.com/gin-gonic/gin"
)

type LoanController struct{ *Srv }

func NewLoanController(s *Srv) *LoanController { return &LoanController{Srv: s} }

// 借出
func (lc *LoanController) Create(c *gin.Context) {
	var in db.LoanInput
	if !lc.bind(c, &in) {
		return
	}
	loan, err := lc.Repo.CreateLoan(c.Request.Context(), in, app.ActorOf(c))
	if err != nil {
		lc.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, loan)
}

// 归还；已归还的再次调用直接返回原记录
func (lc *LoanController) Return(c *gin.Context) {
	var in struct {
		ReturnDate *time.Time `json:"returnDate"`
	}
	if !lc.bind(c, &in) {
		return
	}
	loan, err := lc.Repo.ReturnLoan(c.Request.Context(), c.Param("id"), in.ReturnDate, app.ActorOf(c))
	if err != nil {
		lc.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, loan)
}

func (lc *LoanController) Get(c *gin.Context) {
	loan, err := lc.Repo.GetLoan(c.Request.Context(), c.Param("id"))
	if err != nil {
		lc.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, loan)
}

// 借还记录 ?status=loaned|returned&equipmentId=&q=&overdue=true
func (lc *LoanController) List(c *gin.Context) {
	q := db.LoanQuery{
		Status:      c.Query("status"),
		EquipmentID: c.Query("equipmentId"),
		Q:           c.Query("q"),
	}
	if b := boolQuery(c, "overdue"); b != nil {
		q.Overdue = *b
	}
	q.Page, q.Size = pageParams(c)
	res, err := lc.Repo.ListLoans(c.Request.Context(), q)
	if err != nil {
		lc.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
