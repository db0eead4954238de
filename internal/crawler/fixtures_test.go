package crawler

import "strings"

const kiprisLandingHTML = `<html><head><title>KIPRIS</title></head><body>
<form><input id="inputQuery" type="text"></form>
</body></html>`

const kiprisResultsHTML = `<html><head><title>KIPRIS 검색결과</title></head><body>
<div class="view-options">
  <button data-view-option="seoji" class="btn">서지정보</button>
</div>
<section class="results">
  <article class="result-item">
    <h1 class="title"><button>[1] 배터리 관리 장치 (BATTERY MANAGEMENT APPARATUS)</button></h1>
    <div class="field"><em data-lang-id="srlt.patent.an">출원번호(일자)</em><div><p class="txt">1020190012345(2019-06-12)</p></div></div>
    <div class="field"><em data-lang-id="srlt.patent.rn">등록번호(일자)</em><div><p class="txt">1021234560000(2020-03-02)</p></div></div>
    <div class="field"><em data-lang-id="srlt.patent.ap">출원인</em><div><button>주식회사 한빛테크</button><button>홍길동</button></div></div>
    <div class="field"><em data-lang-id="srlt.patent.in">발명자</em><div><p class="txt">김발명, 이발명</p></div></div>
    <div class="field"><em data-lang-id="srlt.patent.trh">최종권리자</em><div><button>한빛홀딩스</button></div></div>
  </article>
  <article class="result-item">
    <h1 class="title"><button>[2]   충전 제어 방법 (Charging control method)</button></h1>
    <div class="field"><em data-lang-id="srlt.patent.an">출원번호(일자)</em><div><p class="txt">1020200054321(2020-05-07)</p></div></div>
    <div class="field"><em data-lang-id="srlt.patent.rn">등록번호(일자)</em><div><p class="txt">1022345670000(2021-11-30)</p></div></div>
    <div class="field"><em data-lang-id="srlt.patent.ap">출원인</em><div><p class="txt">삼성전자 주식회사, 홍길동</p></div></div>
  </article>
  <article class="result-item">
    <h1 class="title"><button>전극 구조체</button></h1>
    <div class="field"><em data-lang-id="srlt.patent.an">출원번호(일자)</em><div><p class="txt">1020210099999(2021-08-01)</p></div></div>
    <div class="field"><em data-lang-id="srlt.patent.rn">등록번호(일자)</em><div><p class="txt">-</p></div></div>
    <div class="field"><em data-lang-id="srlt.patent.ap">출원인</em><div><p class="txt">주식회사 한빛테크</p></div></div>
    <div class="field"><em data-lang-id="srlt.patent.trh">최종권리자</em><div><p class="txt">한빛홀딩스, 주식회사 한빛테크</p></div></div>
  </article>
</section>
</body></html>`

const kiprisEmptyHTML = `<html><head><title>KIPRIS 검색결과</title></head><body>
<div class="no-result">검색결과가 없습니다.</div>
</body></html>`

const patentGoFormHTML = `<html><body>
<ul class="tabs"><li><a href="#">출원인별검색</a></li><li><a href="#">사건번호별검색</a></li></ul>
<select id="selectNum2"><option value="appl">출원번호</option><option value="rgst">등록번호</option></select>
<input id="txtRgstNo01" value="10"><input id="txtRgstNo02"><input id="txtRgstNo03"><input id="txtRgstNo04">
</body></html>`

const patentGoDetailHTML = `<html><body>
<div id="docBase1">
  <table class="board_list">
    <caption>등록정보 상세정보조회</caption>
    <tbody>
      <tr><th>등록번호</th><td>1021234560000</td></tr>
      <tr><th>등록상태</th><td> 등록유지 </td></tr>
      <tr><th>청구범위 항수</th><td>12 항 (독립항 2)</td></tr>
      <tr><th>존속기간 만료일자</th><td>2039-6-12</td></tr>
    </tbody>
  </table>
</div>
<div class="board_header"><h5>연차등록정보</h5></div>
<div class="board_body">
  <table class="board_list">
    <thead><tr><th>연차</th><th>납부일자</th><th>납부금액</th></tr></thead>
    <tbody>
      <tr><td>1-3</td><td>2020-03-02</td><td>135,000원</td></tr>
      <tr><td>4</td><td>2023.02.28</td><td>112,000원</td></tr>
      <tr><td>5 - 5</td><td>2024/2/9</td><td> 56,000원50%28,000원 </td></tr>
    </tbody>
  </table>
</div>
</body></html>`

// detailWithStatus swaps the registration status in the detail fixture.
func detailWithStatus(status string) string {
	return strings.Replace(patentGoDetailHTML, "등록유지", status, 1)
}
